// Package formscreen hosts any catalog form: inputs, inline validation,
// the submission lifecycle and navigation on success.
package formscreen

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/catalog"
	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/router"
	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/ui/components"
	"github.com/carmarket/carmarket/internal/ui/formview"
	"github.com/carmarket/carmarket/internal/ui/layout"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

const (
	defaultSuccess = "Готово"
	retryHint      = "Повторите попытку позже"
)

// FormScreen renders one catalog form and submits it.
type FormScreen struct {
	entry     *catalog.Form
	requester form.Requester
	params    map[string]string
	onSuccess func(result json.RawMessage) tea.Cmd
	submit    string

	view    *formview.Model
	spinner spinner.Model
	ctx     context.Context
	cancel  context.CancelFunc
}

var (
	_ screen.Screen          = (*FormScreen)(nil)
	_ screen.Closer          = (*FormScreen)(nil)
	_ screen.InputCapturer   = (*FormScreen)(nil)
	_ screen.KeyHintProvider = (*FormScreen)(nil)
)

// Option configures a FormScreen.
type Option func(*FormScreen)

// WithParams supplies the {param} values of the form's request path.
func WithParams(params map[string]string) Option {
	return func(s *FormScreen) { s.params = params }
}

// WithValues pre-fills fields before the first render.
func WithValues(values map[string]any) Option {
	return func(s *FormScreen) {
		for k, v := range values {
			if err := s.view.SetValue(k, v); err != nil {
				slog.Warn("prefill field", "form", s.entry.Name, "field", k, "error", err)
			}
		}
	}
}

// WithOnSuccess replaces the default success behaviour (navigate to the
// form's next route, or clear the form) with fn.
func WithOnSuccess(fn func(result json.RawMessage) tea.Cmd) Option {
	return func(s *FormScreen) { s.onSuccess = fn }
}

// WithSubmitLabel overrides the submit button text.
func WithSubmitLabel(label string) Option {
	return func(s *FormScreen) { s.submit = label }
}

// New creates a screen for entry submitting through r.
func New(entry *catalog.Form, r form.Requester, opts ...Option) *FormScreen {
	ctx, cancel := context.WithCancel(context.Background())
	s := &FormScreen{
		entry:     entry,
		requester: r,
		submit:    "Отправить",
		view:      formview.New(entry.NewSession()),
		spinner:   components.NewSpinner(),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session exposes the form session.
func (s *FormScreen) Session() *form.Session { return s.view.Session() }

func (s *FormScreen) Title() string { return s.entry.Title }

func (s *FormScreen) Init() tea.Cmd { return s.view.Init() }

// Close cancels the in-flight request and drops any late result.
func (s *FormScreen) Close() {
	s.cancel()
	s.view.Session().Close()
}

// CapturingInput keeps esc for the confirmation dialog.
func (s *FormScreen) CapturingInput() bool {
	return s.view.Session().State() == form.PendingConfirmation
}

func (s *FormScreen) KeyHints() []layout.KeyHint {
	if s.CapturingInput() {
		return []layout.KeyHint{
			{Key: "Y", Description: "Подтвердить"},
			{Key: "N", Description: "Отмена"},
		}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Следующее поле"},
		{Key: "←→", Description: "Выбор"},
		{Key: "Enter", Description: "Отправить"},
		{Key: "Esc", Description: "Назад"},
	}
}

func (s *FormScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	sess := s.view.Session()

	switch msg := msg.(type) {
	case formview.ResultMsg:
		if !sess.Resolve(msg.Attempt, msg.Result, msg.Err) {
			return s, nil
		}
		return s, s.afterResolve()

	case spinner.TickMsg:
		if sess.State() != form.Submitting {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *FormScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	sess := s.view.Session()

	switch sess.State() {
	case form.Submitting:
		return nil
	case form.PendingConfirmation:
		switch msg.String() {
		case "y", "enter":
			a, err := sess.Confirm()
			if err != nil {
				return nil
			}
			return s.send(a)
		case "n", "esc":
			_ = sess.Cancel()
		}
		return nil
	}

	cmd, submit := s.view.Update(msg)
	if !submit {
		return cmd
	}
	return s.trySubmit()
}

func (s *FormScreen) trySubmit() tea.Cmd {
	sess := s.view.Session()
	if sess.State() == form.Succeeded {
		_ = sess.Reset()
	}
	if sess.Schema().RequiresConfirmation() {
		// Blocked submits surface as inline errors; nothing else to do.
		_ = sess.RequestConfirmation()
		return nil
	}
	a, err := sess.Begin()
	if err != nil {
		return nil
	}
	return s.send(a)
}

func (s *FormScreen) send(a form.Attempt) tea.Cmd {
	path, err := s.entry.ResolvePath(s.params)
	if err != nil {
		slog.Error("resolve form path", "form", s.entry.Name, "error", err)
		s.view.Session().Resolve(a, nil, err)
		return nil
	}
	return tea.Batch(
		formview.Submit(s.ctx, s.requester, a, s.entry.Method, path, s.view.Session().Payload()),
		s.spinner.Tick,
	)
}

func (s *FormScreen) afterResolve() tea.Cmd {
	sess := s.view.Session()
	sub := sess.Submission()
	if sub.State == form.Failed {
		return screen.Toast(screen.ToastError, sub.Err.Message)
	}

	text := s.entry.Success
	if text == "" {
		text = defaultSuccess
	}
	toast := screen.Toast(screen.ToastSuccess, text)

	if s.onSuccess != nil {
		return tea.Batch(toast, s.onSuccess(sub.Result))
	}
	if next := s.entry.NextPath(sub.Result); next != "" {
		return tea.Batch(toast, func() tea.Msg {
			return router.NavigateMsg{Path: next, Replace: true}
		})
	}
	_ = sess.Clear()
	s.view.Sync()
	return toast
}

func (s *FormScreen) View(width, height int) string {
	sess := s.view.Session()
	if sess.State() == form.PendingConfirmation {
		return components.RenderConfirm(sess.Schema().ConfirmPrompt(), width, height)
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(s.entry.Title))
	b.WriteString("\n\n")

	if sub := sess.Submission(); sub.State == form.Failed && sub.Err != nil {
		msg := sub.Err.Message
		if form.IsTemporary(sub.Err) {
			msg += ". " + retryHint
		}
		b.WriteString(components.RenderBanner(msg))
		b.WriteString("\n\n")
	}

	b.WriteString(s.view.View(width, s.submit))

	if sess.State() == form.Submitting {
		b.WriteString("\n\n" + s.spinner.View() + " " + theme.Hint.Render("Отправка..."))
	}

	return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
}
