package remote

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/carmarket/carmarket/internal/api"
)

type fixed struct {
	raw  json.RawMessage
	err  error
	path string
}

func (f *fixed) Request(_ context.Context, method, path string, _ any) (json.RawMessage, error) {
	f.path = method + " " + path
	return f.raw, f.err
}

func TestLoaderDecodes(t *testing.T) {
	r := &fixed{raw: json.RawMessage(`[{"transaction_id":1,"status":"completed"}]`)}
	var l Loader[[]api.Transaction]

	msg := l.Load(context.Background(), r, api.PathTransactions)().(LoadedMsg[[]api.Transaction])
	if !l.Loading() {
		t.Error("expected loading before accept")
	}
	if !l.Accept(msg, "fallback") {
		t.Fatal("latest result should be accepted")
	}
	if r.path != "GET "+api.PathTransactions {
		t.Errorf("request = %q", r.path)
	}
	if len(l.Data()) != 1 || l.Data()[0].ID != 1 || !l.Loaded() || l.Loading() {
		t.Errorf("data = %+v", l.Data())
	}
}

func TestLoaderDropsStaleResults(t *testing.T) {
	r := &fixed{raw: json.RawMessage(`[]`)}
	var l Loader[[]api.Report]

	first := l.Load(context.Background(), r, api.PathReports)
	second := l.Load(context.Background(), r, api.PathReports)

	if l.Accept(first().(LoadedMsg[[]api.Report]), "") {
		t.Error("stale result accepted")
	}
	if !l.Loading() {
		t.Error("stale result must not end loading")
	}
	if !l.Accept(second().(LoadedMsg[[]api.Report]), "") {
		t.Error("latest result rejected")
	}
}

func TestLoaderErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &api.Error{Status: 403, Message: "Доступ запрещен"}, "Доступ запрещен"},
		{"transport", errors.New("connection refused"), "Ошибка загрузки"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Loader[api.Dashboard]
			msg := l.Load(context.Background(), &fixed{err: tt.err}, api.PathDashboard)()
			l.Accept(msg.(LoadedMsg[api.Dashboard]), "Ошибка загрузки")
			if l.Message() != tt.want {
				t.Errorf("Message = %q, want %q", l.Message(), tt.want)
			}
			if l.Loaded() {
				t.Error("failed load must not mark loaded")
			}
		})
	}
}
