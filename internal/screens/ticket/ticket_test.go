package ticket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/carmarket/carmarket/internal/api"
	"github.com/carmarket/carmarket/internal/stubapi"
)

func TestTicket_LoadsCreatedTicket(t *testing.T) {
	srv := httptest.NewServer(stubapi.New().Handler())
	defer srv.Close()
	client := api.New(srv.URL)

	raw, err := client.Request(context.Background(), http.MethodPost, api.PathSupportTickets, map[string]string{
		"subject":     "Не приходит SMS",
		"description": "Жду код уже час",
		"priority":    "high",
	})
	if err != nil {
		t.Fatal(err)
	}
	created, err := api.Decode[api.Ticket](raw)
	if err != nil {
		t.Fatal(err)
	}

	s := New(created.ID, client)
	s.Update(s.Init()())
	if got := s.Ticket(); got.Subject != "Не приходит SMS" || got.Priority != "high" {
		t.Errorf("ticket = %+v", got)
	}
	if !strings.Contains(s.View(100, 30), "Высокий") {
		t.Error("expected priority label in view")
	}
}

func TestTicket_NotFound(t *testing.T) {
	srv := httptest.NewServer(stubapi.New().Handler())
	defer srv.Close()

	s := New("missing", api.New(srv.URL))
	s.Update(s.Init()())
	if !strings.Contains(s.View(100, 30), "Обращение не найдено") {
		t.Error("expected the server message")
	}
}
