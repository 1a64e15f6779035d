package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/carmarket/carmarket/internal/router"
	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/ui/components"
)

// Entry is one menu destination.
type Entry struct {
	Label       string
	Description string
	Path        string
}

// DefaultEntries lists every screen reachable from home.
func DefaultEntries() []Entry {
	return []Entry{
		{Label: "Регистрация", Description: "новый аккаунт", Path: "/register"},
		{Label: "Подтверждение телефона", Description: "код из SMS", Path: "/verify/phone"},
		{Label: "Подтверждение email", Description: "письмо со ссылкой", Path: "/verify/email"},
		{Label: "Сброс пароля", Description: "инструкции по SMS", Path: "/reset-password"},
		{Label: "Характеристики авто", Description: "параметры объявления", Path: "/cars/attributes"},
		{Label: "Оплата услуги", Description: "VIP и продвижение", Path: "/payments/new"},
		{Label: "История платежей", Description: "транзакции и возвраты", Path: "/payments/history"},
		{Label: "Обращение в поддержку", Description: "новый тикет", Path: "/support/new"},
		{Label: "Панель администратора", Description: "сводка", Path: "/admin"},
		{Label: "Модерация", Description: "очередь объявлений", Path: "/admin/moderation"},
		{Label: "Жалобы", Description: "жалобы пользователей", Path: "/admin/reports"},
		{Label: "Журнал запросов", Description: "последние обращения к API", Path: "/requests"},
	}
}

// Status is the summary shown above the menu.
type Status struct {
	Backend    string
	LogEnabled bool
	Requests   int
	Failed     int
}

// HomeScreen is the main menu.
type HomeScreen struct {
	menu    components.Menu
	status  Status
	refresh func() Status
}

var (
	_ screen.Screen  = (*HomeScreen)(nil)
	_ screen.Resumer = (*HomeScreen)(nil)
)

// New creates a home screen linking entries.
func New(entries []Entry, status Status) *HomeScreen {
	items := make([]components.MenuItem, 0, len(entries)+1)
	for _, e := range entries {
		path := e.Path
		items = append(items, components.MenuItem{
			Label:       e.Label,
			Description: e.Description,
			Action:      func() tea.Cmd { return router.Navigate(path) },
		})
	}
	items = append(items, components.MenuItem{
		Label:  "Выход",
		Action: func() tea.Cmd { return tea.Quit },
	})

	return &HomeScreen{
		menu:   components.NewMenu(items),
		status: status,
	}
}

// SetStatus refreshes the summary, after the request log changes.
func (h *HomeScreen) SetStatus(st Status) { h.status = st }

// RefreshWith makes Resume re-read the summary from fn.
func (h *HomeScreen) RefreshWith(fn func() Status) { h.refresh = fn }

// Resume updates the request counters when a screen above closes.
func (h *HomeScreen) Resume() tea.Cmd {
	if h.refresh != nil {
		h.status = h.refresh()
	}
	return nil
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := height < 30
	cw := contentWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		renderStatusBar(h.status, cw),
		renderMenuBox(h.menu.View(), cw),
	}
	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Главная"
}
