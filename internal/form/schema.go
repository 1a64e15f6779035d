// Package form implements the form lifecycle engine shared by every screen:
// a declarative field schema, the per-screen session that owns values,
// touched state and derived errors, and the submission state machine.
package form

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies how a field's raw input is coerced.
type Kind string

const (
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
	KindTel      Kind = "tel"
	KindEmail    Kind = "email"
	KindPassword Kind = "password"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindNumber, KindSelect, KindCheckbox, KindTel, KindEmail, KindPassword:
		return true
	}
	return false
}

// DefaultFallback is shown when a submission fails without a server message
// and the schema does not declare its own fallback.
const DefaultFallback = "Something went wrong. Please try again."

// ValidateFunc inspects a field's current value (and the full value set for
// cross-field rules) and returns an error message, or "" when valid.
// Implementations must be pure and must not modify all.
type ValidateFunc func(value Value, all Values) string

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// Field describes one input.
type Field struct {
	Key         string
	Label       string
	Kind        Kind
	Required    bool
	Placeholder string
	// MaxLength caps the rune length of string input; 0 means unlimited.
	MaxLength int
	// DigitsOnly strips every non-digit character from string input.
	DigitsOnly bool
	// Omit excludes the field from Payload (e.g. a password confirmation).
	Omit     bool
	Options  []Option
	Default  Value
	Validate ValidateFunc
}

// Schema is the immutable, ordered set of fields a session is built from.
type Schema struct {
	name     string
	fallback string
	confirm  string
	fields   []Field
	index    map[string]int
}

// SchemaOption configures optional schema attributes.
type SchemaOption func(*Schema)

// WithFallback sets the message used when a submission fails without a
// server-provided message.
func WithFallback(msg string) SchemaOption {
	return func(s *Schema) {
		s.fallback = strings.TrimSpace(msg)
	}
}

// WithConfirmation marks the form as requiring an explicit confirmation
// step before it is submitted. prompt is shown to the user.
func WithConfirmation(prompt string) SchemaOption {
	return func(s *Schema) {
		s.confirm = strings.TrimSpace(prompt)
	}
}

var (
	errEmptyKey     = errors.New("form: field key is empty")
	errDuplicateKey = errors.New("form: duplicate field key")
	errUnknownKind  = errors.New("form: unknown field kind")
)

// NewSchema validates fields and returns an immutable schema. Fields without
// a kind default to KindText.
func NewSchema(name string, fields []Field, opts ...SchemaOption) (*Schema, error) {
	s := &Schema{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		f.Key = strings.TrimSpace(f.Key)
		if f.Key == "" {
			return nil, fmt.Errorf("%w (field %d)", errEmptyKey, i)
		}
		if _, dup := s.index[f.Key]; dup {
			return nil, fmt.Errorf("%w: %q", errDuplicateKey, f.Key)
		}
		if f.Kind == "" {
			f.Kind = KindText
		}
		if !f.Kind.Valid() {
			return nil, fmt.Errorf("%w: %q on %q", errUnknownKind, f.Kind, f.Key)
		}
		f.Options = append([]Option(nil), f.Options...)
		s.index[f.Key] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for schemas
// declared in code at package init.
func MustSchema(name string, fields []Field, opts ...SchemaOption) *Schema {
	s, err := NewSchema(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fallback returns the generic failure message for this form.
func (s *Schema) Fallback() string {
	if s.fallback == "" {
		return DefaultFallback
	}
	return s.fallback
}

// ConfirmPrompt returns the confirmation prompt, or "" when the form submits
// without confirmation.
func (s *Schema) ConfirmPrompt() string { return s.confirm }

// RequiresConfirmation reports whether submissions go through
// PendingConfirmation first.
func (s *Schema) RequiresConfirmation() bool { return s.confirm != "" }

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns a copy of the ordered fields.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Field returns the field with the given key.
func (s *Schema) Field(key string) (Field, bool) {
	i, ok := s.index[key]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}
