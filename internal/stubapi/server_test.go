package stubapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carmarket/carmarket/internal/api"
	"github.com/carmarket/carmarket/internal/catalog"
	"github.com/carmarket/carmarket/internal/form"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func startStub(t *testing.T) (*Server, *api.Client, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)}
	s := New(WithClock(clock.Now))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, api.New(srv.URL), clock
}

func lookup(t *testing.T, name string) *catalog.Form {
	t.Helper()
	f, err := catalog.MustDefault().Lookup(name)
	require.NoError(t, err)
	return f
}

func TestRegisterThroughCatalogForm(t *testing.T) {
	s, client, _ := startStub(t)
	f := lookup(t, "register")
	sess := f.NewSession()

	for k, v := range map[string]string{
		"first_name":      "Айдана",
		"last_name":       "Сейтова",
		"phone_number":    "+7 705 000 11 22",
		"password":        "supersecret",
		"confirmPassword": "supersecret",
	} {
		require.NoError(t, sess.SetValue(k, v))
	}

	sub, err := sess.Submit(context.Background(), client, f.Method, f.Path)
	require.NoError(t, err)
	require.Equal(t, form.Succeeded, sub.State, "err: %v", sub.Err)
	assert.True(t, s.CheckPassword("+77050001122", "supersecret"))
	assert.False(t, s.CheckPassword("+77050001122", "wrong"))

	// Same phone again is rejected with the server's message.
	require.NoError(t, sess.Reset())
	sub, err = sess.Submit(context.Background(), client, f.Method, f.Path)
	require.NoError(t, err)
	require.Equal(t, form.Failed, sub.State)
	assert.Equal(t, "Пользователь с таким номером уже существует", sub.Err.Message)
}

func TestVerifyPhone(t *testing.T) {
	_, client, _ := startStub(t)
	ctx := context.Background()

	_, err := client.Request(ctx, http.MethodPost, api.PathVerifyPhone, map[string]string{
		"phone_number": DemoPhone, "verification_code": "000000",
	})
	assert.Equal(t, "Неверный код", form.MessageOf(err, ""))

	raw, err := client.Request(ctx, http.MethodPost, api.PathVerifyPhone, map[string]string{
		"phone_number": DemoPhone, "verification_code": DevCode,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"verified":true}`, string(raw))
}

func TestSendCodeIsThrottled(t *testing.T) {
	_, client, clock := startStub(t)
	ctx := context.Background()
	body := map[string]string{"phone_number": "+77770001111"}

	_, err := client.Request(ctx, http.MethodPost, api.PathSendPhoneCode, body)
	require.NoError(t, err)

	clock.Advance(59 * time.Second)
	_, err = client.Request(ctx, http.MethodPost, api.PathSendPhoneCode, body)
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, api.StatusOf(err))
	assert.Equal(t, "Повторная отправка возможна через 1 с", form.MessageOf(err, ""))

	clock.Advance(time.Second)
	_, err = client.Request(ctx, http.MethodPost, api.PathSendPhoneCode, body)
	assert.NoError(t, err)
}

func TestSupportTicketNavigatesToTicket(t *testing.T) {
	_, client, _ := startStub(t)
	f := lookup(t, "support_ticket")
	sess := f.NewSession()
	require.NoError(t, sess.SetValue("subject", "Не проходит оплата"))
	require.NoError(t, sess.SetValue("description", "Карта отклонена"))

	sub, err := sess.Submit(context.Background(), client, f.Method, f.Path)
	require.NoError(t, err)
	require.Equal(t, form.Succeeded, sub.State)

	ticket, err := api.Decode[api.Ticket](sub.Result)
	require.NoError(t, err)
	assert.Equal(t, "medium", mustGetTicketPriority(t, client, ticket.ID))
	assert.Equal(t, api.SupportTicketPath(ticket.ID), f.NextPath(sub.Result))
}

func mustGetTicketPriority(t *testing.T, client *api.Client, id string) string {
	t.Helper()
	raw, err := client.Request(context.Background(), http.MethodGet, api.PathSupportTickets+"/"+id, nil)
	require.NoError(t, err)
	tk, err := api.Decode[struct {
		Priority string `json:"priority"`
	}](raw)
	require.NoError(t, err)
	return tk.Priority
}

func TestModerationReject(t *testing.T) {
	_, client, _ := startStub(t)
	ctx := context.Background()

	raw, err := client.Request(ctx, http.MethodGet, api.ModerationListPath(api.ModerationPending), nil)
	require.NoError(t, err)
	items, err := api.Decode[[]api.ModerationItem](raw)
	require.NoError(t, err)
	require.Len(t, items, 2)

	_, err = client.Request(ctx, http.MethodPost, api.ModerationItemPath(items[0].ID), map[string]string{"action": "reject"})
	assert.Equal(t, "Укажите причину отклонения", form.MessageOf(err, ""))

	_, err = client.Request(ctx, http.MethodPost, api.ModerationItemPath(items[0].ID), map[string]string{"action": "reject", "reason": "Фото из интернета"})
	require.NoError(t, err)

	_, err = client.Request(ctx, http.MethodPost, api.ModerationItemPath(items[0].ID), map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusConflict, api.StatusOf(err))

	raw, err = client.Request(ctx, http.MethodGet, api.ModerationListPath(api.ModerationRejected), nil)
	require.NoError(t, err)
	rejected, err := api.Decode[[]api.ModerationItem](raw)
	require.NoError(t, err)
	assert.Len(t, rejected, 2)
}

func TestResolveReport(t *testing.T) {
	_, client, _ := startStub(t)
	ctx := context.Background()

	_, err := client.Request(ctx, http.MethodPost, api.ReportResolvePath(1), map[string]string{"resolution": "action_taken", "notes": "Аккаунт заблокирован"})
	require.NoError(t, err)

	raw, err := client.Request(ctx, http.MethodGet, api.ReportListPath(api.ReportResolved), nil)
	require.NoError(t, err)
	reports, err := api.Decode[[]api.Report](raw)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Аккаунт заблокирован", reports[0].ResolutionNotes)
	require.NotNil(t, reports[0].ResolvedDate)

	_, err = client.Request(ctx, http.MethodPost, api.ReportResolvePath(99), map[string]string{"resolution": "dismissed"})
	assert.Equal(t, http.StatusNotFound, api.StatusOf(err))
}

func TestPaymentAndRefund(t *testing.T) {
	_, client, _ := startStub(t)
	ctx := context.Background()

	raw, err := client.Request(ctx, http.MethodPost, api.PathPayments, map[string]string{"service_id": "2", "payment_method": "kaspi"})
	require.NoError(t, err)
	paid, err := api.Decode[api.Transaction](raw)
	require.NoError(t, err)
	assert.True(t, paid.Refundable())

	_, err = client.Request(ctx, http.MethodPost, api.RefundPath(paid.ID), map[string]string{"reason": "Передумал"})
	require.NoError(t, err)

	_, err = client.Request(ctx, http.MethodPost, api.RefundPath(paid.ID), nil)
	assert.Equal(t, http.StatusConflict, api.StatusOf(err))

	raw, err = client.Request(ctx, http.MethodGet, api.PathTransactions+"?status=pending", nil)
	require.NoError(t, err)
	pending, err := api.Decode[[]api.Transaction](raw)
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	assert.Equal(t, "refund", pending[0].Type)

	raw, err = client.Request(ctx, http.MethodGet, api.PathTransactions, nil)
	require.NoError(t, err)
	all, err := api.Decode[[]api.Transaction](raw)
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestDashboard(t *testing.T) {
	_, client, _ := startStub(t)
	raw, err := client.Request(context.Background(), http.MethodGet, api.PathDashboard, nil)
	require.NoError(t, err)
	d, err := api.Decode[api.Dashboard](raw)
	require.NoError(t, err)

	assert.Equal(t, 1, d.TotalUsers)
	assert.Equal(t, 2, d.PendingModeration)
	assert.Equal(t, 2, d.OpenReports)
	assert.Equal(t, 1, d.ActiveListings)
	assert.NotEmpty(t, d.RecentActivities)
}

func TestUnknownRouteUsesMessageEnvelope(t *testing.T) {
	_, client, _ := startStub(t)
	_, err := client.Request(context.Background(), http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, api.StatusOf(err))
	assert.Equal(t, "Not found", form.MessageOf(err, ""))
}
