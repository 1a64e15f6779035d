package form

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// RequiredMessage is shown inline for a touched required field left empty.
const RequiredMessage = "Required"

// numberMessage is reported for number fields holding unparsable text.
const numberMessage = "Must be a number"

// Session is the live state of one form instance. It is owned by a single
// screen and mutated only from that screen's update loop; it is not safe for
// concurrent use.
type Session struct {
	id         string
	schema     *Schema
	values     Values
	touched    map[string]bool
	errors     map[string]string
	submission Submission
	seq        int
	closed     bool
}

// NewSession starts a session seeded with the schema defaults.
func NewSession(schema *Schema) *Session {
	s := &Session{
		id:      uuid.New().String(),
		schema:  schema,
		touched: make(map[string]bool),
	}
	s.values = s.defaults()
	s.recompute()
	return s
}

func (s *Session) defaults() Values {
	values := make(Values, s.schema.Len())
	for _, f := range s.schema.fields {
		if f.Default != nil {
			values[f.Key] = coerce(f, f.Default)
		}
	}
	return values
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Schema returns the schema the session was built from.
func (s *Session) Schema() *Schema { return s.schema }

// SetValue coerces raw per the field kind, marks the field touched and
// recomputes every error, since cross-field rules may depend on key.
func (s *Session) SetValue(key string, raw any) error {
	if s.closed {
		return ErrSessionClosed
	}
	f, ok := s.schema.Field(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	s.values[key] = coerce(f, raw)
	s.touched[key] = true
	s.recompute()
	return nil
}

// recompute derives errors from values and the schema alone.
func (s *Session) recompute() {
	errs := make(map[string]string)
	snapshot := s.values.Clone()
	for _, f := range s.schema.fields {
		v := s.values[f.Key]
		if f.Kind == KindNumber {
			if _, isText := v.(string); isText {
				errs[f.Key] = numberMessage
				continue
			}
		}
		if f.Validate == nil {
			continue
		}
		if msg := f.Validate(v, snapshot); msg != "" {
			errs[f.Key] = msg
		}
	}
	s.errors = errs
}

// Value returns the current value of key.
func (s *Session) Value(key string) Value { return s.values[key] }

// Values returns a copy of all values.
func (s *Session) Values() Values { return s.values.Clone() }

// Error returns the validation message for key, or "".
func (s *Session) Error(key string) string { return s.errors[key] }

// Errors returns a copy of the current validation messages.
func (s *Session) Errors() map[string]string {
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// Touched reports whether the user has interacted with key.
func (s *Session) Touched(key string) bool { return s.touched[key] }

// VisibleError is the inline message to render for key: nothing until the
// field is touched, then the validation error or RequiredMessage.
func (s *Session) VisibleError(key string) string {
	if !s.touched[key] {
		return ""
	}
	if msg := s.errors[key]; msg != "" {
		return msg
	}
	if f, ok := s.schema.Field(key); ok && f.Required && IsBlank(s.values[key]) {
		return RequiredMessage
	}
	return ""
}

// Filled counts fields holding a non-empty value; whitespace counts.
func (s *Session) Filled() int {
	n := 0
	for _, f := range s.schema.fields {
		if !IsEmpty(s.values[f.Key]) {
			n++
		}
	}
	return n
}

// Total returns the number of fields.
func (s *Session) Total() int { return s.schema.Len() }

// Progress is the completion ratio in [0, 1]; an empty schema yields 0.
func (s *Session) Progress() float64 {
	total := s.schema.Len()
	if total == 0 {
		return 0
	}
	return float64(s.Filled()) / float64(total)
}

// Submittable reports whether every required field is filled, there are no
// validation errors and no submission is in flight.
func (s *Session) Submittable() bool {
	if s.closed || s.submission.State == Submitting {
		return false
	}
	if len(s.errors) > 0 {
		return false
	}
	for _, f := range s.schema.fields {
		if f.Required && IsBlank(s.values[f.Key]) {
			return false
		}
	}
	return true
}

// Payload returns the values to send, without Omit fields and unset values.
func (s *Session) Payload() map[string]any {
	out := make(map[string]any, len(s.values))
	for _, f := range s.schema.fields {
		if f.Omit {
			continue
		}
		if v, ok := s.values[f.Key]; ok && v != nil {
			out[f.Key] = v
		}
	}
	return out
}

// Submission returns the current lifecycle snapshot.
func (s *Session) Submission() Submission { return s.submission }

// State is shorthand for Submission().State.
func (s *Session) State() State { return s.submission.State }

// Begin moves the session to Submitting and returns the attempt token the
// eventual result must be resolved with.
func (s *Session) Begin() (Attempt, error) {
	if s.closed {
		return Attempt{}, ErrSessionClosed
	}
	switch s.submission.State {
	case Submitting:
		return Attempt{}, ErrConcurrentSubmitIgnored
	case PendingConfirmation:
		return Attempt{}, ErrAwaitingConfirmation
	case Succeeded:
		return Attempt{}, ErrAlreadySucceeded
	}
	if !s.Submittable() {
		s.touchAll()
		return Attempt{}, ErrValidationBlocked
	}
	return s.start(), nil
}

// RequestConfirmation parks a submittable form in PendingConfirmation.
func (s *Session) RequestConfirmation() error {
	if s.closed {
		return ErrSessionClosed
	}
	switch s.submission.State {
	case Submitting:
		return ErrConcurrentSubmitIgnored
	case PendingConfirmation:
		return nil
	case Succeeded:
		return ErrAlreadySucceeded
	}
	if !s.Submittable() {
		s.touchAll()
		return ErrValidationBlocked
	}
	s.submission = Submission{State: PendingConfirmation}
	return nil
}

// Confirm submits a form waiting in PendingConfirmation.
func (s *Session) Confirm() (Attempt, error) {
	if s.closed {
		return Attempt{}, ErrSessionClosed
	}
	if s.submission.State != PendingConfirmation {
		return Attempt{}, ErrNotPending
	}
	if !s.Submittable() {
		s.submission = Submission{State: Idle}
		s.touchAll()
		return Attempt{}, ErrValidationBlocked
	}
	return s.start(), nil
}

// Cancel abandons a pending confirmation.
func (s *Session) Cancel() error {
	if s.submission.State != PendingConfirmation {
		return ErrNotPending
	}
	s.submission = Submission{State: Idle}
	return nil
}

func (s *Session) start() Attempt {
	s.seq++
	s.submission = Submission{State: Submitting}
	return Attempt{SessionID: s.id, Seq: s.seq}
}

func (s *Session) touchAll() {
	for _, f := range s.schema.fields {
		s.touched[f.Key] = true
	}
}

// Resolve applies the outcome of attempt a. It reports false, changing
// nothing, when the session is closed or a is not the in-flight attempt.
func (s *Session) Resolve(a Attempt, result json.RawMessage, err error) bool {
	if s.closed || a.SessionID != s.id || a.Seq != s.seq || s.submission.State != Submitting {
		return false
	}
	if err != nil {
		s.submission = Submission{
			State: Failed,
			Err: &SubmissionError{
				Message: MessageOf(err, s.schema.Fallback()),
				Err:     err,
			},
		}
		return true
	}
	s.submission = Submission{State: Succeeded, Result: result}
	return true
}

// Reset returns the lifecycle to Idle keeping values, so the session can be
// submitted again. It fails only while a request is in flight.
func (s *Session) Reset() error {
	if s.submission.State == Submitting {
		return &TransitionError{From: Submitting, To: Idle}
	}
	s.submission = Submission{State: Idle}
	return nil
}

// Clear restores defaults, forgets touched fields and resets the lifecycle.
func (s *Session) Clear() error {
	if err := s.Reset(); err != nil {
		return err
	}
	s.values = s.defaults()
	s.touched = make(map[string]bool)
	s.recompute()
	return nil
}

// Close tears the session down. Later results and edits are ignored.
func (s *Session) Close() { s.closed = true }

// Closed reports whether Close was called.
func (s *Session) Closed() bool { return s.closed }

// Submit runs the whole lifecycle synchronously: Begin, one call to r with
// Payload, Resolve. The returned error is non-nil only when the attempt was
// rejected before reaching the network; request failures are reported in
// the returned Submission.
func (s *Session) Submit(ctx context.Context, r Requester, method, path string) (Submission, error) {
	a, err := s.Begin()
	if err != nil {
		return s.submission, err
	}
	result, callErr := Call(ctx, r, method, path, s.Payload())
	s.Resolve(a, result, callErr)
	return s.submission, nil
}
