package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/store"
)

var _ form.Requester = (*Client)(nil)
var _ form.Requester = (*Recorder)(nil)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestRequestSendsJSONAndToken(t *testing.T) {
	var (
		gotAuth   string
		gotType   string
		gotBody   map[string]any
		gotMethod string
		gotPath   string
	)
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		gotPath = r.URL.RequestURI()
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ticket_id":"t-1"}`))
	})

	c := New(srv.URL+"/", WithToken("secret"))
	raw, err := c.Request(context.Background(), http.MethodPost, PathSupportTickets, map[string]any{"subject": "Help"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, PathSupportTickets, gotPath)
	assert.Equal(t, map[string]any{"subject": "Help"}, gotBody)

	ticket, err := Decode[Ticket](raw)
	require.NoError(t, err)
	assert.Equal(t, "t-1", ticket.ID)
}

func TestGetWithoutBody(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`[{"moderation_id":7,"title":"Camry"}]`))
	})

	raw, err := New(srv.URL).Request(context.Background(), http.MethodGet, ModerationListPath(ModerationPending), nil)
	require.NoError(t, err)
	items, err := Decode[[]ModerationItem](raw)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].ID)
}

func TestErrorCarriesServerMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"message field", 400, `{"message":"Invalid code"}`, "Invalid code"},
		{"error field", 409, `{"error":"Phone taken"}`, "Phone taken"},
		{"no message", 500, `{}`, ""},
		{"not json", 502, `<html>bad gateway</html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := New(srv.URL).Request(context.Background(), http.MethodPost, PathVerifyPhone, map[string]any{"verification_code": "1"})
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.UserMessage())
			assert.Equal(t, tt.status, StatusOf(err))

			fallback := "Неверный код"
			want := tt.wantMsg
			if want == "" {
				want = fallback
			}
			assert.Equal(t, want, form.MessageOf(err, fallback))
		})
	}
}

func TestTransportErrorIsTemporary(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, WithTimeout(time.Second)).Request(context.Background(), http.MethodGet, PathDashboard, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.True(t, apiErr.Temporary())
	assert.Empty(t, apiErr.UserMessage())
}

func TestRecorderStoresCancelledCall(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "log.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = WithRecording(New(srv.URL), st.EventRepo()).Request(ctx, http.MethodGet, PathDashboard, nil)
	require.Error(t, err)

	events, err := st.EventRepo().RecentRequests(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, PathDashboard, events[0].Path)
	assert.False(t, events[0].Success)
}

func TestEmptySuccessBody(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	raw, err := New(srv.URL).Request(context.Background(), http.MethodPost, RefundPath(5), nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestRecorderStoresEachCall(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "log.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == PathVerifyPhone {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Invalid code"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})

	rec := WithRecording(New(srv.URL), st.EventRepo())
	ctx := context.Background()

	_, err = rec.Request(ctx, http.MethodPost, PathRegister, map[string]any{"first_name": "Aida"})
	require.NoError(t, err)
	_, err = rec.Request(ctx, http.MethodPost, PathVerifyPhone, map[string]any{"verification_code": "000000"})
	require.Error(t, err)

	events, err := st.EventRepo().RecentRequests(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, PathVerifyPhone, events[0].Path)
	assert.Equal(t, http.StatusBadRequest, events[0].Status)
	assert.False(t, events[0].Success)
	assert.Contains(t, events[0].ErrorMessage, "Invalid code")

	assert.Equal(t, PathRegister, events[1].Path)
	assert.Equal(t, http.StatusCreated, events[1].Status)
	assert.True(t, events[1].Success)
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		{Type: "payment", Status: "completed", Amount: 2000},
		{Type: "payment", Status: "pending", Amount: 1000},
		{Type: "refund", Status: "completed", Amount: 500},
		{Type: "payment", Status: "failed", Amount: 700},
	}
	got := Summarize(txs)
	assert.Equal(t, TransactionStats{Total: 4, Completed: 2, Pending: 1, Failed: 1, TotalAmount: 2000}, got)
	assert.True(t, txs[0].Refundable())
	assert.False(t, txs[1].Refundable())
	assert.True(t, txs[2].Credit())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/api/admin/moderation/12", ModerationItemPath(12))
	assert.Equal(t, "/api/admin/reports/3/resolve", ReportResolvePath(3))
	assert.Equal(t, "/support/tickets/42", SupportTicketPath("42"))
}
