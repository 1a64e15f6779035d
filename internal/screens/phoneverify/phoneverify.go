// Package phoneverify is the SMS code entry screen with a resend action
// gated by a cooldown.
package phoneverify

import (
	"context"
	"strings"
	"unicode/utf8"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/api"
	"github.com/carmarket/carmarket/internal/catalog"
	"github.com/carmarket/carmarket/internal/cooldown"
	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/router"
	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/ui/components"
	"github.com/carmarket/carmarket/internal/ui/formview"
	"github.com/carmarket/carmarket/internal/ui/layout"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

const (
	codeField  = "verification_code"
	codeLength = 6

	resendFallback = "Ошибка при отправке кода"
	resendSuccess  = "Код отправлен повторно"
	verifySuccess  = "Телефон подтверждён"
)

// resendSchema has no fields; the session only tracks the resend lifecycle.
var resendSchema = form.MustSchema("resend_code", nil, form.WithFallback(resendFallback))

// Screen verifies a phone number with the code sent by SMS.
type Screen struct {
	entry         *catalog.Form
	requester     form.Requester
	phone         string
	resendSeconds int

	code     *formview.Model
	resend   *form.Session
	cooldown *cooldown.Timer
	spinner  spinner.Model
	ctx      context.Context
	cancel   context.CancelFunc
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.Closer          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
)

// New creates the screen for phone. The code was just sent, so the resend
// action starts locked for resendSeconds.
func New(entry *catalog.Form, r form.Requester, phone string, resendSeconds int, opts ...cooldown.Option) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{
		entry:         entry,
		requester:     r,
		phone:         phone,
		resendSeconds: resendSeconds,
		code:          formview.New(entry.NewSession()),
		resend:        form.NewSession(resendSchema),
		cooldown:      cooldown.New(opts...),
		spinner:       components.NewSpinner(),
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (s *Screen) Title() string { return s.entry.Title }

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.code.Init(), s.cooldown.Start(s.resendSeconds))
}

// Close stops the countdown and drops in-flight results.
func (s *Screen) Close() {
	s.cancel()
	s.cooldown.Stop()
	s.code.Session().Close()
	s.resend.Close()
}

// Code returns the digits typed so far.
func (s *Screen) Code() string {
	return form.Stringify(s.code.Session().Value(codeField))
}

// Cooldown exposes the resend timer.
func (s *Screen) Cooldown() *cooldown.Timer { return s.cooldown }

// Verification exposes the code session.
func (s *Screen) Verification() *form.Session { return s.code.Session() }

// Resend exposes the resend session.
func (s *Screen) Resend() *form.Session { return s.resend }

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Подтвердить"}}
	if s.cooldown.Allow() {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "Отправить код повторно"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Назад"})
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case cooldown.TickMsg, cooldown.ExpiredMsg:
		return s, s.cooldown.Update(msg)

	case formview.ResultMsg:
		if s.code.Session().Resolve(msg.Attempt, msg.Result, msg.Err) {
			return s, s.afterVerify()
		}
		if s.resend.Resolve(msg.Attempt, msg.Result, msg.Err) {
			return s, s.afterResend()
		}
		return s, nil

	case spinner.TickMsg:
		if s.code.Session().State() != form.Submitting && s.resend.State() != form.Submitting {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+r" {
			return s, s.sendAgain()
		}
		if s.code.Session().State() == form.Submitting {
			return s, nil
		}
		cmd, submit := s.code.Update(msg)
		if submit {
			return s, s.verify()
		}
		return s, cmd
	}
	return s, nil
}

func (s *Screen) verify() tea.Cmd {
	sess := s.code.Session()
	_ = sess.Reset()
	a, err := sess.Begin()
	if err != nil {
		return nil
	}
	body := sess.Payload()
	body["phone_number"] = s.phone
	return tea.Batch(
		formview.Submit(s.ctx, s.requester, a, s.entry.Method, s.entry.Path, body),
		s.spinner.Tick,
	)
}

func (s *Screen) afterVerify() tea.Cmd {
	sub := s.code.Session().Submission()
	if sub.State == form.Failed {
		return nil
	}
	toast := screen.Toast(screen.ToastSuccess, verifySuccess)
	next := s.entry.NextPath(sub.Result)
	if next == "" {
		return toast
	}
	return tea.Batch(toast, func() tea.Msg {
		return router.NavigateMsg{Path: next, Replace: true}
	})
}

// sendAgain requests a new code when the cooldown allows it.
func (s *Screen) sendAgain() tea.Cmd {
	if !s.cooldown.Allow() {
		return nil
	}
	_ = s.resend.Reset()
	a, err := s.resend.Begin()
	if err != nil {
		return nil
	}
	body := map[string]any{"phone_number": s.phone}
	return tea.Batch(
		formview.Submit(s.ctx, s.requester, a, "POST", api.PathSendPhoneCode, body),
		s.spinner.Tick,
	)
}

func (s *Screen) afterResend() tea.Cmd {
	sub := s.resend.Submission()
	if sub.State == form.Failed {
		return screen.Toast(screen.ToastError, sub.Err.Message)
	}
	// A fresh code makes the previous verification error stale.
	if s.code.Session().State() == form.Failed {
		_ = s.code.Session().Reset()
	}
	return tea.Batch(
		screen.Toast(screen.ToastSuccess, resendSuccess),
		s.cooldown.Reset(s.resendSeconds),
	)
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(s.entry.Title))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render("Код отправлен на номер "))
	b.WriteString(theme.Label.Render(s.phone))
	b.WriteString("\n\n")

	code := s.Code()
	typed := utf8.RuneCountInString(code)
	b.WriteString(components.Dots(typed, codeLength))
	b.WriteString("\n\n")
	b.WriteString(s.code.View(width, "Подтвердить"))
	b.WriteString("\n\n")

	if sub := s.code.Session().Submission(); sub.State == form.Failed && sub.Err != nil {
		b.WriteString(components.RenderBanner(sub.Err.Message))
		b.WriteString("\n\n")
	}

	switch {
	case s.resend.State() == form.Submitting:
		b.WriteString(s.spinner.View() + " " + theme.Hint.Render("Отправляем код..."))
	case s.cooldown.Allow():
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render("Ctrl+R — отправить код повторно"))
	default:
		b.WriteString(theme.Hint.Render("Повторная отправка через " + s.cooldown.View()))
	}

	if s.code.Session().State() == form.Submitting {
		b.WriteString("\n\n" + s.spinner.View() + " " + theme.Hint.Render("Проверка кода..."))
	}

	return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
}
