package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, marketplace orange on dark slate
var (
	Primary   = lipgloss.Color("#F97316") // Orange
	Secondary = lipgloss.Color("#38BDF8") // Sky
	Accent    = lipgloss.Color("#FACC15") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#EAB308") // Yellow
	Error     = lipgloss.Color("#EF4444") // Red
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0B0F19") // Near black
	BgCard    = lipgloss.Color("#1F2937") // Graphite
	Border    = lipgloss.Color("#374151") // Gray
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Label = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true)

	FieldError = lipgloss.NewStyle().
			Foreground(Error)
)

// Layout
var (
	Header = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Footer = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Dialog = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Primary).
		Padding(1, 3)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Good = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Bad = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Pending = lipgloss.NewStyle().
		Foreground(Warning)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Primary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)

	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(BgDark).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Background(BgCard).
			Foreground(TextDim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)

	Banner = lipgloss.NewStyle().
		Foreground(Text).
		Background(Error).
		Padding(0, 1)

	ToastInfo = lipgloss.NewStyle().
			Foreground(BgDark).
			Background(Secondary).
			Padding(0, 1)

	ToastSuccess = lipgloss.NewStyle().
			Foreground(BgDark).
			Background(Success).
			Padding(0, 1)

	ToastError = lipgloss.NewStyle().
			Foreground(Text).
			Background(Error).
			Padding(0, 1)
)

// StatusStyle picks the style for a backend status word.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "completed", "approved", "resolved", "active":
		return Good
	case "failed", "rejected", "dismissed":
		return Bad
	case "pending", "open", "refund_requested":
		return Pending
	}
	return Body
}
