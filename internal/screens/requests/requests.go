// Package requests shows the local log of backend calls.
package requests

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/store"
	"github.com/carmarket/carmarket/internal/ui/components"
	"github.com/carmarket/carmarket/internal/ui/layout"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

// Limit caps how many events one load shows.
const Limit = 50

var filters = []form.Option{
	{Value: "all", Label: "Все"},
	{Value: "errors", Label: "Ошибки"},
}

// loadedMsg carries one page of the log.
type loadedMsg struct {
	seq    int
	events []store.RequestEvent
	stats  store.RequestStats
	err    error
}

// Screen lists recent requests, newest first.
type Screen struct {
	repo store.EventRepo

	filter components.Picker
	seq    int
	loaded bool
	events []store.RequestEvent
	stats  store.RequestStats
	err    error
	offset int

	ctx    context.Context
	cancel context.CancelFunc
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.Closer          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
)

// New creates the log screen. A nil repo means logging is disabled.
func New(repo store.EventRepo) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{
		repo:   repo,
		filter: components.NewPicker(filters, "all"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Screen) Title() string { return "Журнал запросов" }

func (s *Screen) Close() { s.cancel() }

func (s *Screen) Init() tea.Cmd {
	if s.repo == nil {
		return nil
	}
	s.seq++
	seq, ctx, repo := s.seq, s.ctx, s.repo
	return func() tea.Msg {
		events, err := repo.RecentRequests(ctx, store.QueryOpts{Limit: Limit})
		if err != nil {
			return loadedMsg{seq: seq, err: err}
		}
		stats, err := repo.Stats(ctx)
		return loadedMsg{seq: seq, events: events, stats: stats, err: err}
	}
}

// Events returns the loaded events after the filter is applied.
func (s *Screen) Events() []store.RequestEvent {
	if s.filter.Value() != "errors" {
		return s.events
	}
	var out []store.RequestEvent
	for _, ev := range s.events {
		if !ev.Success {
			out = append(out, ev)
		}
	}
	return out
}

// Stats returns totals over the whole log.
func (s *Screen) Stats() store.RequestStats { return s.stats }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Прокрутка"},
		{Key: "←→", Description: "Фильтр"},
		{Key: "Ctrl+R", Description: "Обновить"},
		{Key: "Esc", Description: "Назад"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.seq != s.seq || s.ctx.Err() != nil {
			return s, nil
		}
		s.loaded = true
		s.err = msg.err
		if msg.err == nil {
			s.events, s.stats = msg.events, msg.stats
			s.offset = 0
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.offset < len(s.Events())-1 {
				s.offset++
			}
		case "left", "right", "h", "l":
			var changed bool
			s.filter, changed = s.filter.Update(msg)
			if changed {
				s.offset = 0
			}
		case "ctrl+r":
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(s.Title()))
	b.WriteString("   ")
	b.WriteString(s.filter.View(true))
	b.WriteString("\n\n")

	switch {
	case s.repo == nil:
		b.WriteString(theme.Hint.Render("Журнал выключен: клиент запущен с --no-history."))
		return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
	case s.err != nil:
		b.WriteString(components.RenderBanner("Не удалось прочитать журнал: " + s.err.Error()))
		return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
	case !s.loaded:
		b.WriteString(theme.Hint.Render("Загрузка..."))
		return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
	}

	b.WriteString(fmt.Sprintf("%s %d   %s %d\n\n",
		theme.Subtitle.Render("Всего:"), s.stats.Total,
		theme.Bad.Render("Ошибок:"), s.stats.Failed,
	))

	events := s.Events()
	if len(events) == 0 {
		b.WriteString(theme.Hint.Render("Запросов нет"))
	}
	rows := len(events) - s.offset
	if avail := height - 8; avail > 0 && rows > avail {
		rows = avail
	}
	for _, ev := range events[s.offset : s.offset+max(rows, 0)] {
		mark := theme.Good.Render("✓")
		if !ev.Success {
			mark = theme.Bad.Render("✗")
		}
		status := "—"
		if ev.Status > 0 {
			status = fmt.Sprint(ev.Status)
		}
		b.WriteString(fmt.Sprintf("%s %s  %-6s %-36s %s  %s\n",
			mark,
			theme.Hint.Render(ev.Timestamp.Local().Format("15:04:05")),
			ev.Method,
			ev.Path,
			theme.Body.Render(status),
			theme.Hint.Render(fmt.Sprintf("%d мс", ev.LatencyMs)),
		))
		if ev.ErrorMessage != "" {
			b.WriteString("    " + theme.FieldError.Render(ev.ErrorMessage) + "\n")
		}
	}
	return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
}
