package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carmarket/carmarket/internal/api"
	"github.com/carmarket/carmarket/internal/catalog"
	"github.com/carmarket/carmarket/internal/config"
	"github.com/carmarket/carmarket/internal/router"
	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/screens/formscreen"
	"github.com/carmarket/carmarket/internal/screens/home"
	"github.com/carmarket/carmarket/internal/screens/notice"
	"github.com/carmarket/carmarket/internal/screens/phoneverify"
	"github.com/carmarket/carmarket/internal/screens/ticket"
	"github.com/carmarket/carmarket/internal/screens/welcome"
	"github.com/carmarket/carmarket/internal/store"
	"github.com/carmarket/carmarket/internal/stubapi"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	srv := httptest.NewServer(stubapi.New().Handler())
	t.Cleanup(srv.Close)
	cfg := config.DefaultConfig()
	cfg.APIURL = srv.URL
	return Deps{
		Config:    cfg,
		Requester: api.New(srv.URL),
		Catalog:   catalog.MustDefault(),
	}
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(AppModel)
	require.True(t, ok, "Update returned %T", next)
	return am, cmd
}

// capturingScreen holds on to esc.
type capturingScreen struct{ escs int }

func (c *capturingScreen) Init() tea.Cmd { return nil }
func (c *capturingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		c.escs++
	}
	return c, nil
}
func (c *capturingScreen) View(int, int) string { return "" }
func (c *capturingScreen) Title() string        { return "capture" }
func (c *capturingScreen) CapturingInput() bool { return true }

func TestRoutesResolveEveryMenuEntry(t *testing.T) {
	deps := testDeps(t)
	deps.Config.Phone = stubapi.DemoPhone
	routes := Routes(deps)

	for _, e := range home.DefaultEntries() {
		s, ok := routes.Resolve(e.Path)
		if assert.True(t, ok, "no route for %s", e.Path) {
			_, isNotice := s.(*notice.NoticeScreen)
			assert.False(t, isNotice, "%s resolved to a notice", e.Path)
		}
	}
}

func TestRoutesWithParams(t *testing.T) {
	routes := Routes(testDeps(t))

	s, ok := routes.Resolve("/support/tickets/t-42")
	require.True(t, ok)
	assert.IsType(t, &ticket.Screen{}, s)

	s, ok = routes.Resolve("/verify/phone/+77010000000")
	require.True(t, ok)
	assert.IsType(t, &phoneverify.Screen{}, s)
}

func TestVerifyPhoneWithoutNumberShowsNotice(t *testing.T) {
	s, ok := Routes(testDeps(t)).Resolve("/verify/phone")
	require.True(t, ok)
	assert.IsType(t, &notice.NoticeScreen{}, s)
}

func TestNavigateAndEscBack(t *testing.T) {
	m := newAppModel(testDeps(t))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = update(t, m, router.NavigateMsg{Path: "/register"})
	require.Equal(t, 2, m.router.Depth())
	assert.IsType(t, &formscreen.FormScreen{}, m.router.Active())

	m, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, 1, m.router.Depth())

	// esc on the root does nothing.
	_, cmd = update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
}

func TestEscGoesToCapturingScreen(t *testing.T) {
	m := newAppModel(testDeps(t))
	c := &capturingScreen{}
	m, _ = update(t, m, router.PushScreenMsg{Screen: c})

	m, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, c.escs)
	assert.Equal(t, 2, m.router.Depth())
}

func TestUnknownRouteShowsToast(t *testing.T) {
	m := newAppModel(testDeps(t))
	m, cmd := update(t, m, router.NavigateMsg{Path: "/nowhere"})
	require.NotNil(t, cmd)
	m, tick := update(t, m, cmd())

	require.NotNil(t, m.toast)
	assert.Equal(t, screen.ToastError, m.toast.Kind)
	assert.Contains(t, m.toast.Text, "/nowhere")
	assert.NotNil(t, tick, "toast should schedule its expiry")
}

func TestToastExpiresOnlyForLatest(t *testing.T) {
	m := newAppModel(testDeps(t))
	m, _ = update(t, m, screen.ToastMsg{Kind: screen.ToastInfo, Text: "first"})
	first := m.toastID
	m, _ = update(t, m, screen.ToastMsg{Kind: screen.ToastSuccess, Text: "second"})

	m, _ = update(t, m, toastExpiredMsg{id: first})
	require.NotNil(t, m.toast)
	assert.Equal(t, "second", m.toast.Text)

	m, _ = update(t, m, toastExpiredMsg{id: m.toastID})
	assert.Nil(t, m.toast)
}

func TestSplashIsRoot(t *testing.T) {
	deps := testDeps(t)
	deps.Splash = true
	m := newAppModel(deps)
	assert.IsType(t, &welcome.WelcomeScreen{}, m.router.Active())

	m, cmd := update(t, m, tea.KeyPressMsg{Code: ' '})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.IsType(t, &home.HomeScreen{}, m.router.Active())
	assert.Equal(t, 1, m.router.Depth())
}

func TestHomeStatusReadsRequestLog(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "log.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	repo := st.EventRepo()
	ctx := context.Background()
	require.NoError(t, repo.AppendRequest(ctx, store.RequestEventData{Method: "GET", Path: "/a", Success: true}))
	require.NoError(t, repo.AppendRequest(ctx, store.RequestEventData{Method: "POST", Path: "/b", Status: 400}))

	got := loadStatus("api.local", repo)
	assert.Equal(t, home.Status{Backend: "api.local", LogEnabled: true, Requests: 2, Failed: 1}, got)

	assert.Equal(t, home.Status{Backend: "api.local"}, loadStatus("api.local", nil))
}

func TestViewShowsBackendAndToast(t *testing.T) {
	m := newAppModel(testDeps(t))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, screen.ToastMsg{Kind: screen.ToastSuccess, Text: "Готово"})

	view := m.render()
	assert.Contains(t, view, "127.0.0.1")
	assert.Contains(t, view, "Готово")
}
