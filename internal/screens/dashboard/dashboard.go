// Package dashboard shows the admin overview counters and recent activity.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/api"
	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/router"
	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/ui/components"
	"github.com/carmarket/carmarket/internal/ui/layout"
	"github.com/carmarket/carmarket/internal/ui/remote"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

// Screen renders GET /api/admin/dashboard.
type Screen struct {
	requester form.Requester
	data      remote.Loader[api.Dashboard]
	ctx       context.Context
	cancel    context.CancelFunc
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.Closer          = (*Screen)(nil)
	_ screen.Resumer         = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
)

// New creates the dashboard screen.
func New(r form.Requester) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{requester: r, ctx: ctx, cancel: cancel}
}

func (s *Screen) Title() string { return "Панель администратора" }

func (s *Screen) Init() tea.Cmd {
	return s.data.Load(s.ctx, s.requester, api.PathDashboard)
}

func (s *Screen) Close() { s.cancel() }

// Resume refreshes the counters after returning from a queue.
func (s *Screen) Resume() tea.Cmd { return s.Init() }

// Dashboard returns the last loaded counters.
func (s *Screen) Dashboard() api.Dashboard { return s.data.Data() }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "M", Description: "Модерация"},
		{Key: "P", Description: "Жалобы"},
		{Key: "Ctrl+R", Description: "Обновить"},
		{Key: "Esc", Description: "Назад"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case remote.LoadedMsg[api.Dashboard]:
		s.data.Accept(msg, "Ошибка загрузки статистики")
	case tea.KeyMsg:
		switch msg.String() {
		case "m":
			return s, router.Navigate("/admin/moderation")
		case "p":
			return s, router.Navigate("/admin/reports")
		case "ctrl+r":
			return s, s.Init()
		}
	}
	return s, nil
}

func card(label string, value int, accent bool) string {
	valueStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	if accent && value > 0 {
		valueStyle = valueStyle.Foreground(theme.Warning)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(22).
		Padding(0, 1).
		Render(theme.Subtitle.Render(label) + "\n" + valueStyle.Render(fmt.Sprint(value)))
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(s.Title()))
	b.WriteString("\n\n")

	if msg := s.data.Message(); msg != "" {
		b.WriteString(components.RenderBanner(msg))
		b.WriteString("\n\n")
	}
	if !s.data.Loaded() {
		b.WriteString(theme.Hint.Render("Загрузка..."))
		return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
	}

	d := s.data.Data()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Пользователи", d.TotalUsers, false),
		card("Новых сегодня", d.UsersToday, false),
		card("Объявления", d.TotalListings, false),
	))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Активные", d.ActiveListings, false),
		card("На модерации", d.PendingModeration, true),
		card("Открытые жалобы", d.OpenReports, true),
	))
	b.WriteString("\n\n")

	b.WriteString(theme.Label.Render("Последние действия"))
	b.WriteString("\n")
	if len(d.RecentActivities) == 0 {
		b.WriteString(theme.Hint.Render("Нет действий"))
	}
	for _, a := range d.RecentActivities {
		b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			theme.Hint.Render(a.CreatedDate.Format("02.01 15:04")),
			theme.Body.Render(a.Action),
			theme.Subtitle.Render(a.UserName),
		))
	}

	return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
}
