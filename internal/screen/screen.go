package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/carmarket/carmarket/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is implemented by screens that own timers or in-flight requests.
// The router calls Close when the screen leaves the stack; results that
// arrive afterwards must be ignored.
type Closer interface {
	Close()
}

// Resumer is implemented by screens that refresh when a pop reveals them
// again, e.g. a list reloading after a decision form closes.
type Resumer interface {
	Resume() tea.Cmd
}

// InputCapturer is implemented by screens that are editing text and want
// keys such as esc delivered to them instead of triggering navigation.
type InputCapturer interface {
	CapturingInput() bool
}

// ToastKind selects how a toast is styled.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

// ToastMsg asks the root model to show a short-lived notification.
type ToastMsg struct {
	Kind ToastKind
	Text string
}

// Toast returns a command emitting a ToastMsg.
func Toast(kind ToastKind, text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Kind: kind, Text: text} }
}
