// Package queue lists the admin moderation queue and user reports, and
// opens decision forms for their items.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/api"
	"github.com/carmarket/carmarket/internal/catalog"
	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/router"
	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/screens/formscreen"
	"github.com/carmarket/carmarket/internal/ui/components"
	"github.com/carmarket/carmarket/internal/ui/layout"
	"github.com/carmarket/carmarket/internal/ui/remote"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

// Kind selects which queue the screen shows.
type Kind int

const (
	Moderation Kind = iota
	Reports
)

const loadFallback = "Ошибка загрузки данных"

// row is the common shape of a listed item.
type row struct {
	id       int64
	title    string
	subtitle string
	status   string
	when     string
}

// Screen is a filtered, selectable list of moderation items or reports.
type Screen struct {
	kind      Kind
	requester form.Requester
	catalog   *catalog.Catalog

	filter     components.Picker
	moderation remote.Loader[[]api.ModerationItem]
	reports    remote.Loader[[]api.Report]
	cursor     int

	ctx    context.Context
	cancel context.CancelFunc
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.Closer          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.Resumer         = (*Screen)(nil)
)

var moderationFilters = []form.Option{
	{Value: api.ModerationPending, Label: "На проверке"},
	{Value: api.ModerationApproved, Label: "Одобренные"},
	{Value: api.ModerationRejected, Label: "Отклонённые"},
	{Value: "all", Label: "Все"},
}

var reportFilters = []form.Option{
	{Value: api.ReportOpen, Label: "Открытые"},
	{Value: api.ReportResolved, Label: "Решённые"},
	{Value: api.ReportDismissed, Label: "Отклонённые"},
	{Value: "all", Label: "Все"},
}

// New creates a queue screen. The filter starts on items awaiting action.
func New(kind Kind, r form.Requester, c *catalog.Catalog) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	filters := moderationFilters
	if kind == Reports {
		filters = reportFilters
	}
	return &Screen{
		kind:      kind,
		requester: r,
		catalog:   c,
		filter:    components.NewPicker(filters, filters[0].Value),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *Screen) Title() string {
	if s.kind == Reports {
		return "Жалобы"
	}
	return "Модерация"
}

func (s *Screen) Init() tea.Cmd { return s.load() }

// Close cancels any pending load.
func (s *Screen) Close() { s.cancel() }

// Resume refetches when a decision form closes.
func (s *Screen) Resume() tea.Cmd { return s.load() }

func (s *Screen) load() tea.Cmd {
	status := s.filter.Value()
	if s.kind == Reports {
		return s.reports.Load(s.ctx, s.requester, api.ReportListPath(status))
	}
	return s.moderation.Load(s.ctx, s.requester, api.ModerationListPath(status))
}

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Выбор"},
		{Key: "←→", Description: "Фильтр"},
	}
	if s.kind == Reports {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Решение"})
	} else {
		hints = append(hints,
			layout.KeyHint{Key: "A", Description: "Одобрить"},
			layout.KeyHint{Key: "R", Description: "Отклонить"},
		)
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Назад"})
}

// rows flattens the active list for display.
func (s *Screen) rows() []row {
	var out []row
	if s.kind == Reports {
		for _, r := range s.reports.Data() {
			out = append(out, row{
				id:       r.ID,
				title:    r.Reason + ": " + r.ContentTitle,
				subtitle: "от " + r.ReporterName + " · " + r.Description,
				status:   r.Status,
				when:     r.CreatedDate.Format("02.01 15:04"),
			})
		}
		return out
	}
	for _, m := range s.moderation.Data() {
		sub := m.UserName
		if m.AutoModerationScore > 0 {
			sub += fmt.Sprintf(" · автооценка %d", m.AutoModerationScore)
		}
		if m.RejectionReason != "" {
			sub += " · " + m.RejectionReason
		}
		out = append(out, row{
			id:       m.ID,
			title:    m.Title,
			subtitle: sub,
			status:   m.Status,
			when:     m.SubmittedDate.Format("02.01 15:04"),
		})
	}
	return out
}

func (s *Screen) actionable(r row) bool {
	if s.kind == Reports {
		return r.status == api.ReportOpen
	}
	return r.status == api.ModerationPending
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case remote.LoadedMsg[[]api.ModerationItem]:
		if s.moderation.Accept(msg, loadFallback) {
			s.clampCursor()
		}
		return s, nil

	case remote.LoadedMsg[[]api.Report]:
		if s.reports.Accept(msg, loadFallback) {
			s.clampCursor()
		}
		return s, nil

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) clampCursor() {
	n := len(s.rows())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *Screen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
		return nil
	case "down", "j":
		if s.cursor < len(s.rows())-1 {
			s.cursor++
		}
		return nil
	case "left", "right", "h", "l":
		var changed bool
		s.filter, changed = s.filter.Update(msg)
		if changed {
			s.cursor = 0
			return s.load()
		}
		return nil
	case "ctrl+r":
		return s.load()
	}

	rows := s.rows()
	if s.cursor >= len(rows) || !s.actionable(rows[s.cursor]) {
		return nil
	}
	selected := rows[s.cursor]

	switch s.kind {
	case Reports:
		if msg.String() == "enter" {
			return s.openDecision("report_resolve", selected.id, nil)
		}
	default:
		switch msg.String() {
		case "a", "enter":
			return s.openDecision("moderation_decision", selected.id, map[string]any{"action": "approve"})
		case "r":
			return s.openDecision("moderation_decision", selected.id, map[string]any{"action": "reject"})
		}
	}
	return nil
}

// openDecision pushes the decision form for item id. On success the form
// pops itself and Resume refetches the list.
func (s *Screen) openDecision(name string, id int64, values map[string]any) tea.Cmd {
	entry, err := s.catalog.Lookup(name)
	if err != nil {
		return screen.Toast(screen.ToastError, err.Error())
	}
	opts := []formscreen.Option{
		formscreen.WithParams(map[string]string{"id": strconv.FormatInt(id, 10)}),
		formscreen.WithSubmitLabel("Сохранить"),
		formscreen.WithOnSuccess(func(json.RawMessage) tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		}),
	}
	if values != nil {
		opts = append(opts, formscreen.WithValues(values))
	}
	fs := formscreen.New(entry, s.requester, opts...)
	return func() tea.Msg { return router.PushScreenMsg{Screen: fs} }
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(s.Title()))
	b.WriteString("   ")
	b.WriteString(s.filter.View(true))
	b.WriteString("\n\n")

	loading, loaded, message := s.moderation.Loading(), s.moderation.Loaded(), s.moderation.Message()
	if s.kind == Reports {
		loading, loaded, message = s.reports.Loading(), s.reports.Loaded(), s.reports.Message()
	}

	switch {
	case message != "":
		b.WriteString(components.RenderBanner(message))
		b.WriteString("\n\n")
	case loading && !loaded:
		b.WriteString(theme.Hint.Render("Загрузка..."))
		return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
	}

	rows := s.rows()
	if len(rows) == 0 && loaded {
		b.WriteString(theme.Hint.Render("Нет элементов"))
	}
	for i, r := range rows {
		prefix := "  "
		titleStyle := theme.Unselected
		if i == s.cursor {
			prefix = "▸ "
			titleStyle = theme.Selected
		}
		b.WriteString(titleStyle.Render(prefix+r.title) + "  " +
			theme.StatusStyle(r.status).Render(r.status) + "  " +
			theme.Hint.Render(r.when) + "\n")
		b.WriteString("    " + theme.Subtitle.Render(r.subtitle) + "\n")
	}

	return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
}
