package dashboard

import (
	"net/http/httptest"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/carmarket/carmarket/internal/api"
	"github.com/carmarket/carmarket/internal/router"
	"github.com/carmarket/carmarket/internal/stubapi"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestDashboard_LoadsCounters(t *testing.T) {
	srv := httptest.NewServer(stubapi.New().Handler())
	defer srv.Close()

	s := New(api.New(srv.URL))
	if !strings.Contains(s.View(100, 30), "Загрузка") {
		t.Error("expected loading state before data")
	}

	s.Update(s.Init()())
	d := s.Dashboard()
	if d.PendingModeration != 2 || d.OpenReports != 2 {
		t.Errorf("dashboard = %+v", d)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "Последние действия") {
		t.Error("expected activity section")
	}
}

func TestDashboard_ErrorBanner(t *testing.T) {
	srv := httptest.NewServer(stubapi.New().Handler())
	srv.Close()

	s := New(api.New(srv.URL))
	s.Update(s.Init()())
	if !strings.Contains(s.View(100, 30), "Ошибка загрузки статистики") {
		t.Error("expected fallback message for a transport failure")
	}
}

func TestDashboard_Shortcuts(t *testing.T) {
	s := New(api.New("http://127.0.0.1:1"))
	tests := map[rune]string{
		'm': "/admin/moderation",
		'p': "/admin/reports",
	}
	for key, want := range tests {
		_, cmd := s.Update(keyPress(key))
		if cmd == nil {
			t.Fatalf("%c: expected navigation", key)
		}
		nav, ok := cmd().(router.NavigateMsg)
		if !ok || nav.Path != want {
			t.Errorf("%c: got %#v, want %s", key, nav, want)
		}
	}
}
