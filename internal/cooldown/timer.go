// Package cooldown implements the resend countdown used by verification
// screens. It counts whole seconds down to zero on a Bubble Tea tick and
// gates an action while time remains.
package cooldown

import (
	"fmt"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
)

// DefaultSeconds is the resend cooldown applied after a code is sent.
const DefaultSeconds = 60

var lastID atomic.Int64

func nextID() int { return int(lastID.Add(1)) }

// TickMsg advances the timer with the matching ID. Ticks scheduled before
// the latest Start or Stop carry an old tag and are ignored.
type TickMsg struct {
	ID  int
	tag int
}

// ExpiredMsg is emitted once when a running timer reaches zero.
type ExpiredMsg struct {
	ID int
}

// Timer is a per-screen countdown. The zero value is not usable; call New.
type Timer struct {
	id        int
	tag       int
	remaining int
	running   bool
	interval  time.Duration
}

// Option configures a Timer.
type Option func(*Timer)

// WithInterval overrides the tick period. Tests use it to avoid real
// second-long waits; the countdown still decrements one unit per tick.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// New returns a stopped timer with nothing remaining.
func New(opts ...Option) *Timer {
	t := &Timer{id: nextID(), interval: time.Second}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID identifies the timer's messages.
func (t *Timer) ID() int { return t.id }

// Remaining returns the whole seconds left, never negative.
func (t *Timer) Remaining() int { return t.remaining }

// Expired reports whether the countdown has reached zero.
func (t *Timer) Expired() bool { return t.remaining == 0 }

// Running reports whether ticks are being scheduled.
func (t *Timer) Running() bool { return t.running }

// Allow reports whether the gated action may run now.
func (t *Timer) Allow() bool { return t.Expired() }

// Start arms the countdown at seconds and schedules the first tick. Any tick
// still pending from an earlier run is invalidated.
func (t *Timer) Start(seconds int) tea.Cmd {
	if seconds < 0 {
		seconds = 0
	}
	t.tag++
	t.remaining = seconds
	t.running = seconds > 0
	if !t.running {
		return nil
	}
	return t.tick()
}

// Reset is Start under the name screens use after a resend.
func (t *Timer) Reset(seconds int) tea.Cmd { return t.Start(seconds) }

// Stop halts the countdown, keeping the remaining value.
func (t *Timer) Stop() {
	t.tag++
	t.running = false
}

// Tick decrements by one second without underflowing.
func (t *Timer) Tick() {
	if t.remaining > 0 {
		t.remaining--
	}
}

// Update consumes TickMsgs addressed to this timer and re-arms itself until
// the countdown reaches zero, at which point it emits ExpiredMsg.
func (t *Timer) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(TickMsg)
	if !ok || m.ID != t.id || m.tag != t.tag || !t.running {
		return nil
	}
	t.Tick()
	if t.remaining > 0 {
		return t.tick()
	}
	t.running = false
	id := t.id
	return func() tea.Msg { return ExpiredMsg{ID: id} }
}

func (t *Timer) tick() tea.Cmd {
	id, tag := t.id, t.tag
	return tea.Tick(t.interval, func(time.Time) tea.Msg {
		return TickMsg{ID: id, tag: tag}
	})
}

// View renders the remaining time as m:ss.
func (t *Timer) View() string {
	return Format(t.remaining)
}

// Format renders seconds as m:ss.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
