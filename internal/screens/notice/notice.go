// Package notice is a static screen explaining why a destination can't be
// opened, such as phone verification without a configured number.
package notice

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

// NoticeScreen shows a message centered in the content area.
type NoticeScreen struct {
	title string
	text  string
	hint  string
}

var _ screen.Screen = (*NoticeScreen)(nil)

// New creates a notice with a title, body text and an optional hint line.
func New(title, text, hint string) *NoticeScreen {
	return &NoticeScreen{title: title, text: text, hint: hint}
}

func (n *NoticeScreen) Init() tea.Cmd {
	return nil
}

func (n *NoticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return n, nil
}

func (n *NoticeScreen) View(width, height int) string {
	body := theme.Subtitle.Render("╌╌ "+n.title+" ╌╌") + "\n\n" + theme.Body.Render(n.text)
	if n.hint != "" {
		body += "\n\n" + theme.Hint.Render(n.hint)
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)
}

func (n *NoticeScreen) Title() string {
	return n.title
}
