package components

import (
	"charm.land/bubbles/v2/spinner"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

// RenderToast renders a one-line notification.
func RenderToast(kind screen.ToastKind, text string) string {
	switch kind {
	case screen.ToastSuccess:
		return theme.ToastSuccess.Render("✓ " + text)
	case screen.ToastError:
		return theme.ToastError.Render("✗ " + text)
	}
	return theme.ToastInfo.Render(text)
}

// RenderBanner renders the failure banner shown above a form.
func RenderBanner(text string) string {
	return theme.Banner.Render("⚠ " + text)
}

// NewSpinner returns the spinner shown while a request is in flight.
func NewSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
	)
}
