package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidationBlocked is returned when a submit is attempted while the
	// form is not submittable. It never reaches the network.
	ErrValidationBlocked = errors.New("form: validation blocked submission")

	// ErrConcurrentSubmitIgnored is returned for a submit attempt while a
	// previous one is still in flight. Screens drop it silently.
	ErrConcurrentSubmitIgnored = errors.New("form: submission already in flight")

	// ErrAwaitingConfirmation is returned by Begin while the session sits in
	// PendingConfirmation; use Confirm or Cancel instead.
	ErrAwaitingConfirmation = errors.New("form: submission awaiting confirmation")

	// ErrNotPending is returned by Confirm when nothing awaits confirmation.
	ErrNotPending = errors.New("form: no submission awaiting confirmation")

	// ErrAlreadySucceeded is returned by Begin after a successful submission
	// until the session is Reset.
	ErrAlreadySucceeded = errors.New("form: already submitted; reset before resubmitting")

	// ErrUnknownField is returned by SetValue for keys outside the schema.
	ErrUnknownField = errors.New("form: unknown field")

	// ErrSessionClosed is returned once the owning screen has torn the
	// session down.
	ErrSessionClosed = errors.New("form: session closed")
)

// SubmissionError is the failure carried by a Failed submission. Message is
// always user-presentable: the server's message when one was supplied,
// otherwise the form's fallback.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submission failed: %s: %v", e.Message, e.Err)
	}
	return "submission failed: " + e.Message
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// TransitionError reports an illegal submission state change.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("form: cannot move submission from %s to %s", e.From, e.To)
}

// Messager is implemented by collaborator errors that carry an optional
// human-readable message from the server.
type Messager interface {
	UserMessage() string
}

type temporary interface {
	Temporary() bool
}

// IsTemporary reports whether err's chain carries a failure that may clear
// up on its own, such as a dropped connection or an overloaded server.
func IsTemporary(err error) bool {
	var t temporary
	return errors.As(err, &t) && t.Temporary()
}

// MessageOf returns the server-supplied message carried anywhere in err's
// chain, or fallback when there is none.
func MessageOf(err error, fallback string) string {
	var m Messager
	if errors.As(err, &m) {
		if msg := strings.TrimSpace(m.UserMessage()); msg != "" {
			return msg
		}
	}
	if strings.TrimSpace(fallback) == "" {
		return DefaultFallback
	}
	return fallback
}
