package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/ui/theme"
)

// RenderConfirm renders a yes/no confirmation dialog centered in the
// content area.
func RenderConfirm(prompt string, width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Label.Render(prompt))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Render("[Y] Да"))
	b.WriteString("    ")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("[N] Отмена"))

	dialog := theme.Dialog.Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, dialog)
}
