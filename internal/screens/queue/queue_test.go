package queue

import (
	"net/http/httptest"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/carmarket/carmarket/internal/api"
	"github.com/carmarket/carmarket/internal/catalog"
	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/router"
	"github.com/carmarket/carmarket/internal/screens/formscreen"
	"github.com/carmarket/carmarket/internal/stubapi"
	"github.com/carmarket/carmarket/internal/ui/formview"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func newQueue(t *testing.T, kind Kind) *Screen {
	t.Helper()
	srv := httptest.NewServer(stubapi.New().Handler())
	t.Cleanup(srv.Close)
	s := New(kind, api.New(srv.URL), catalog.MustDefault())
	t.Cleanup(s.Close)
	s.Update(s.Init()())
	return s
}

// pushed extracts the form screen a key press opened.
func pushed(t *testing.T, cmd tea.Cmd) *formscreen.FormScreen {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a push command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("msg = %T, want router.PushScreenMsg", msg)
	}
	fs, ok := msg.Screen.(*formscreen.FormScreen)
	if !ok {
		t.Fatalf("screen = %T", msg.Screen)
	}
	fs.Init()
	return fs
}

// confirm submits fs through its confirmation dialog and applies the result.
func confirm(t *testing.T, fs *formscreen.FormScreen) []tea.Msg {
	t.Helper()
	fs.Update(specialKey(tea.KeyEnter))
	if fs.Session().State() != form.PendingConfirmation {
		t.Fatalf("state = %v, want pending confirmation", fs.Session().State())
	}
	_, cmd := fs.Update(keyPress('y'))
	for _, m := range collect(cmd) {
		if res, ok := m.(formview.ResultMsg); ok {
			_, cmd = fs.Update(res)
			return collect(cmd)
		}
	}
	t.Fatal("expected a ResultMsg")
	return nil
}

func TestQueue_LoadsPendingModeration(t *testing.T) {
	s := newQueue(t, Moderation)
	if got := len(s.rows()); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
	if s.Title() != "Модерация" {
		t.Errorf("Title = %q", s.Title())
	}
}

func TestQueue_RejectRequiresReason(t *testing.T) {
	s := newQueue(t, Moderation)
	_, cmd := s.Update(keyPress('r'))
	fs := pushed(t, cmd)

	if got := fs.Session().Value("action"); got != "reject" {
		t.Fatalf("action = %v, want reject", got)
	}

	fs.Update(specialKey(tea.KeyEnter))
	if fs.Session().State() != form.Idle {
		t.Fatalf("state = %v, want idle", fs.Session().State())
	}
	if got := fs.Session().VisibleError("reason"); got != "Укажите причину отклонения" {
		t.Errorf("reason error = %q", got)
	}

	fs.Update(specialKey(tea.KeyTab))
	for _, r := range "Дубликат" {
		fs.Update(keyPress(r))
	}
	msgs := confirm(t, fs)
	if fs.Session().State() != form.Succeeded {
		t.Fatalf("state = %v: %+v", fs.Session().State(), fs.Session().Submission().Err)
	}
	var popped bool
	for _, m := range msgs {
		if _, ok := m.(router.PopScreenMsg); ok {
			popped = true
		}
	}
	if !popped {
		t.Error("decision form should pop itself")
	}

	s.Update(s.Resume()())
	if got := len(s.rows()); got != 1 {
		t.Errorf("pending rows after reject = %d, want 1", got)
	}
}

func TestQueue_FilterReloads(t *testing.T) {
	s := newQueue(t, Moderation)
	_, cmd := s.Update(specialKey(tea.KeyRight))
	if cmd == nil {
		t.Fatal("filter change should reload")
	}
	s.Update(cmd())
	for _, r := range s.rows() {
		if r.status != api.ModerationApproved {
			t.Errorf("row %d status = %q", r.id, r.status)
		}
	}

	// Approved items have no actions.
	if _, cmd := s.Update(keyPress('a')); cmd != nil {
		t.Error("approved items should not open a decision form")
	}
}

func TestQueue_ResolveReport(t *testing.T) {
	s := newQueue(t, Reports)
	before := len(s.rows())
	if before == 0 {
		t.Fatal("expected open reports")
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	fs := pushed(t, cmd)
	confirm(t, fs)
	if fs.Session().State() != form.Succeeded {
		t.Fatalf("state = %v", fs.Session().State())
	}

	s.Update(s.Resume()())
	if got := len(s.rows()); got != before-1 {
		t.Errorf("open reports = %d, want %d", got, before-1)
	}
}

func TestQueue_StaleLoadIgnored(t *testing.T) {
	s := newQueue(t, Moderation)
	stale := s.load()
	fresh := s.load()

	s.Update(fresh())
	n := len(s.rows())
	s.Update(stale())
	if len(s.rows()) != n || s.moderation.Loading() {
		t.Error("stale load should be ignored")
	}
}

func TestQueue_View(t *testing.T) {
	s := newQueue(t, Reports)
	if s.View(100, 30) == "" {
		t.Error("expected non-empty view")
	}
}
