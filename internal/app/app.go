// Package app wires the screens into the root Bubble Tea model.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/catalog"
	"github.com/carmarket/carmarket/internal/config"
	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/router"
	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/screens/dashboard"
	"github.com/carmarket/carmarket/internal/screens/formscreen"
	"github.com/carmarket/carmarket/internal/screens/home"
	"github.com/carmarket/carmarket/internal/screens/notice"
	"github.com/carmarket/carmarket/internal/screens/phoneverify"
	"github.com/carmarket/carmarket/internal/screens/queue"
	"github.com/carmarket/carmarket/internal/screens/requests"
	"github.com/carmarket/carmarket/internal/screens/ticket"
	"github.com/carmarket/carmarket/internal/screens/transactions"
	"github.com/carmarket/carmarket/internal/screens/welcome"
	"github.com/carmarket/carmarket/internal/store"
	"github.com/carmarket/carmarket/internal/ui/components"
	"github.com/carmarket/carmarket/internal/ui/layout"
)

// toastTTL is how long a notification stays on screen.
const toastTTL = 3 * time.Second

// Deps holds the services screens are built from.
type Deps struct {
	Config    config.Config
	Requester form.Requester
	Catalog   *catalog.Catalog
	// EventRepo is nil when the request log is disabled.
	EventRepo store.EventRepo
	// Splash shows the welcome animation before the menu.
	Splash bool
}

type toastExpiredMsg struct{ id int }

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	backend string
	width   int
	height  int

	toast   *screen.ToastMsg
	toastID int
}

// newAppModel creates the model with home, or the splash, as root.
func newAppModel(deps Deps) AppModel {
	backend := backendHost(deps.Config.APIURL)
	statusFn := func() home.Status { return loadStatus(backend, deps.EventRepo) }

	homeFactory := func() screen.Screen {
		h := home.New(home.DefaultEntries(), statusFn())
		h.RefreshWith(statusFn)
		return h
	}

	var root screen.Screen
	if deps.Splash {
		root = welcome.New(homeFactory, backend)
	} else {
		root = homeFactory()
	}

	return AppModel{
		router:  router.New(root, router.WithRoutes(Routes(deps))),
		backend: backend,
	}
}

// Routes builds the navigation table for deps.
func Routes(deps Deps) router.Routes {
	r, c := deps.Requester, deps.Catalog

	formRoute := func(name string, opts ...formscreen.Option) func(map[string]string) screen.Screen {
		return func(map[string]string) screen.Screen {
			entry, err := c.Lookup(name)
			if err != nil {
				return notice.New("Ошибка", err.Error(), "")
			}
			return formscreen.New(entry, r, opts...)
		}
	}
	verifyPhone := func(phone string) screen.Screen {
		entry, err := c.Lookup("verify_phone")
		if err != nil {
			return notice.New("Ошибка", err.Error(), "")
		}
		return phoneverify.New(entry, r, phone, deps.Config.ResendSeconds)
	}

	return router.Routes{
		{Pattern: "/register", Build: formRoute("register", formscreen.WithSubmitLabel("Зарегистрироваться"))},
		{Pattern: "/verify/phone", Build: func(map[string]string) screen.Screen {
			if deps.Config.Phone == "" {
				return notice.New("Подтверждение телефона",
					"Номер телефона не указан.",
					"Зарегистрируйтесь или задайте "+config.EnvPhone+".")
			}
			return verifyPhone(deps.Config.Phone)
		}},
		{Pattern: "/verify/phone/{phone}", Build: func(p map[string]string) screen.Screen {
			return verifyPhone(p["phone"])
		}},
		{Pattern: "/verify/email", Build: formRoute("verify_email", formscreen.WithSubmitLabel("Отправить письмо"))},
		{Pattern: "/reset-password", Build: formRoute("reset_password", formscreen.WithSubmitLabel("Сбросить пароль"))},
		{Pattern: "/support/new", Build: formRoute("support_ticket", formscreen.WithSubmitLabel("Создать обращение"))},
		{Pattern: "/support/tickets/{ticket_id}", Build: func(p map[string]string) screen.Screen {
			return ticket.New(p["ticket_id"], r)
		}},
		{Pattern: "/cars/attributes", Build: formRoute("car_attributes")},
		{Pattern: "/payments/new", Build: formRoute("payment", formscreen.WithSubmitLabel("Оплатить"))},
		{Pattern: "/payments/history", Build: func(map[string]string) screen.Screen {
			return transactions.New(r, c)
		}},
		{Pattern: "/admin", Build: func(map[string]string) screen.Screen {
			return dashboard.New(r)
		}},
		{Pattern: "/admin/moderation", Build: func(map[string]string) screen.Screen {
			return queue.New(queue.Moderation, r, c)
		}},
		{Pattern: "/admin/reports", Build: func(map[string]string) screen.Screen {
			return queue.New(queue.Reports, r, c)
		}},
		{Pattern: "/requests", Build: func(map[string]string) screen.Screen {
			return requests.New(deps.EventRepo)
		}},
	}
}

func backendHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

func loadStatus(backend string, repo store.EventRepo) home.Status {
	st := home.Status{Backend: backend, LogEnabled: repo != nil}
	if repo == nil {
		return st
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	counts, err := repo.Stats(ctx)
	if err != nil {
		slog.Warn("read request stats", "error", err)
		return st
	}
	st.Requests, st.Failed = counts.Total, counts.Failed
	return st
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.ToastMsg:
		return m.showToast(msg)

	case toastExpiredMsg:
		if msg.id == m.toastID {
			m.toast = nil
		}
		return m, nil

	case router.UnknownRouteMsg:
		slog.Warn("unknown route", "path", msg.Path)
		return m.showToast(screen.ToastMsg{Kind: screen.ToastError, Text: "Экран не найден: " + msg.Path})

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturingInput() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) showToast(t screen.ToastMsg) (tea.Model, tea.Cmd) {
	m.toastID++
	m.toast = &t
	id := m.toastID
	return m, tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func (m AppModel) footerHints() []layout.KeyHint {
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Назад"},
			{Key: "Ctrl+C", Description: "Выход"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Навигация"},
		{Key: "Enter", Description: "Выбрать"},
		{Key: "Ctrl+C", Description: "Выход"},
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render lays out header, active screen, toast and footer.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	title := ""
	if active := m.router.Active(); active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.backend, m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)
	if m.toast != nil {
		footer = lipgloss.JoinVertical(lipgloss.Left,
			" "+components.RenderToast(m.toast.Kind, m.toast.Text), footer)
	}

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(deps Deps) error {
	p := tea.NewProgram(newAppModel(deps))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
