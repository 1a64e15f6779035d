package form

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Value is the content of one field: string, float64, bool or nil.
type Value = any

// Values maps field keys to their current values.
type Values map[string]Value

// Clone returns a shallow copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// String returns the value under key rendered as a string ("" when unset).
func (v Values) String(key string) string {
	return Stringify(v[key])
}

// IsEmpty reports whether a value counts as unfilled for progress: unset or
// the empty string. False is a filled checkbox.
func IsEmpty(v Value) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

// IsBlank is IsEmpty that also treats whitespace-only strings as unfilled.
// Required fields use it.
func IsBlank(v Value) bool {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return IsEmpty(v)
}

// Stringify renders a value for display or text validation.
func Stringify(v Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// coerce normalises raw input according to the field kind.
func coerce(f Field, raw any) Value {
	switch f.Kind {
	case KindNumber:
		return coerceNumber(raw)
	case KindCheckbox:
		return coerceBool(raw)
	}

	s := Stringify(raw)
	switch {
	case f.DigitsOnly:
		s = keepDigits(s)
	case f.Kind == KindTel:
		s = keepPhoneChars(s)
	case f.Kind == KindEmail:
		s = strings.TrimSpace(s)
	}
	if f.MaxLength > 0 && utf8.RuneCountInString(s) > f.MaxLength {
		s = string([]rune(s)[:f.MaxLength])
	}
	return s
}

// coerceNumber parses numeric input. Unparsable text is kept as a string so
// the kind check can report it.
func coerceNumber(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return nil
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	s := strings.TrimSpace(Stringify(raw))
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return n
}

func coerceBool(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return nil
	case bool:
		return t
	}
	s := strings.ToLower(strings.TrimSpace(Stringify(raw)))
	switch s {
	case "":
		return nil
	case "on", "yes", "y":
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// keepPhoneChars drops formatting such as spaces, dashes and parentheses,
// keeping digits and a single leading plus sign.
func keepPhoneChars(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}
