// Package ticket shows one support ticket, the destination after a ticket
// is created.
package ticket

import (
	"context"
	"net/url"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/api"
	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/ui/components"
	"github.com/carmarket/carmarket/internal/ui/remote"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

var priorityLabels = map[string]string{
	"low":      "Низкий",
	"medium":   "Средний",
	"high":     "Высокий",
	"critical": "Критический",
}

// Screen renders GET /api/support/tickets/{id}.
type Screen struct {
	id        string
	requester form.Requester
	data      remote.Loader[api.Ticket]
	ctx       context.Context
	cancel    context.CancelFunc
}

var (
	_ screen.Screen = (*Screen)(nil)
	_ screen.Closer = (*Screen)(nil)
)

// New creates the screen for ticket id.
func New(id string, r form.Requester) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{id: id, requester: r, ctx: ctx, cancel: cancel}
}

func (s *Screen) Title() string { return "Обращение" }

func (s *Screen) Init() tea.Cmd {
	return s.data.Load(s.ctx, s.requester, api.PathSupportTickets+"/"+url.PathEscape(s.id))
}

func (s *Screen) Close() { s.cancel() }

// Ticket returns the loaded ticket.
func (s *Screen) Ticket() api.Ticket { return s.data.Data() }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(remote.LoadedMsg[api.Ticket]); ok {
		s.data.Accept(msg, "Не удалось загрузить обращение")
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Обращение " + s.id))
	b.WriteString("\n\n")

	if msg := s.data.Message(); msg != "" {
		b.WriteString(components.RenderBanner(msg))
		return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
	}
	if !s.data.Loaded() {
		b.WriteString(theme.Hint.Render("Загрузка..."))
		return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
	}

	t := s.data.Data()
	priority := priorityLabels[t.Priority]
	if priority == "" {
		priority = t.Priority
	}
	rows := [][2]string{
		{"Тема", t.Subject},
		{"Статус", theme.StatusStyle(t.Status).Render(t.Status)},
		{"Приоритет", priority},
		{"Создано", t.CreatedDate.Local().Format("02.01.2006 15:04")},
	}
	for _, r := range rows {
		b.WriteString(theme.Subtitle.Render(r[0]+": ") + theme.Body.Render(r[1]) + "\n")
	}
	if t.Description != "" {
		b.WriteString("\n" + theme.Card.Render(t.Description) + "\n")
	}
	b.WriteString("\n" + theme.Hint.Render("Мы ответим в ближайшее время."))

	return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
}
