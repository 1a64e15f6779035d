package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/carmarket/carmarket/internal/router"
	"github.com/carmarket/carmarket/internal/screen"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "home" }
func (s *stubScreen) Title() string                           { return "Home" }

func newTestWelcome() (*WelcomeScreen, *int) {
	callCount := 0
	factory := func() screen.Screen {
		callCount++
		return &stubScreen{}
	}
	return New(factory, "localhost:8080"), &callCount
}

func sendTicks(w *WelcomeScreen, n int) tea.Cmd {
	var cmd tea.Cmd
	for i := 0; i < n; i++ {
		_, cmd = w.Update(tickMsg(time.Now()))
	}
	return cmd
}

func TestCarDrivesIn(t *testing.T) {
	w, _ := newTestWelcome()

	if w.carOffset() != 0 {
		t.Errorf("start offset = %d, want 0", w.carOffset())
	}
	if strings.Contains(w.View(80, 24), banner) {
		t.Error("banner should not be visible while driving")
	}

	sendTicks(w, 6)
	if got := w.carOffset(); got != carTravel/2 {
		t.Errorf("offset after 600ms = %d, want %d", got, carTravel/2)
	}

	sendTicks(w, 6)
	if w.carOffset() != carTravel {
		t.Errorf("offset after drive = %d, want %d", w.carOffset(), carTravel)
	}
	view := w.View(80, 24)
	if !strings.Contains(view, banner) {
		t.Error("banner should be visible once the car stops")
	}
	if !strings.Contains(view, "localhost:8080") {
		t.Error("backend should be shown")
	}
}

func TestTicksStopAfterAnimation(t *testing.T) {
	w, callCount := newTestWelcome()

	if cmd := sendTicks(w, 40); cmd != nil {
		t.Error("ticking should stop once the animation finished")
	}
	if w.elapsed != totalDur {
		t.Errorf("elapsed = %v, want capped at %v", w.elapsed, totalDur)
	}
	if *callCount != 0 {
		t.Errorf("factory should not be called without keypress, got %d", *callCount)
	}
}

func TestKeypressSkipsAnimation(t *testing.T) {
	w, callCount := newTestWelcome()
	sendTicks(w, 3)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd == nil {
		t.Fatal("keypress during animation should trigger transition")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if msg.Screen == nil {
		t.Error("replace screen should not be nil")
	}
	if *callCount != 1 {
		t.Errorf("factory should be called once, got %d", *callCount)
	}
}

func TestFactoryCalledOnce(t *testing.T) {
	w, callCount := newTestWelcome()

	w.Update(tea.KeyPressMsg{Code: 'a'})
	_, cmd := w.Update(tea.KeyPressMsg{Code: 'b'})
	if cmd != nil {
		t.Error("second keypress should not produce a command")
	}
	if *callCount != 1 {
		t.Errorf("factory should be called exactly once, got %d", *callCount)
	}
}

func TestTitleEmpty(t *testing.T) {
	w, _ := newTestWelcome()
	if w.Title() != "" {
		t.Errorf("expected empty title, got %q", w.Title())
	}
}
