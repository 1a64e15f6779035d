package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * clamp01(p.Percent))
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(clamp01(p.Percent)*100)))
	}

	return result
}

// Dots renders n slots with the first filled ones solid, the way code
// entry shows how many digits are typed.
func Dots(filled, n int) string {
	if filled > n {
		filled = n
	}
	if filled < 0 {
		filled = 0
	}
	on := lipgloss.NewStyle().Foreground(theme.Primary).Render("●")
	off := lipgloss.NewStyle().Foreground(theme.Border).Render("○")
	return strings.TrimSpace(strings.Repeat(on+" ", filled) + strings.Repeat(off+" ", n-filled))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
