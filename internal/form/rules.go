package form

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Rule constructors return ValidateFuncs. Apart from RequiredIf every rule
// accepts an empty value: emptiness is the concern of Field.Required, so
// optional fields stay valid until the user types something.

var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInstance = validator.New()
	})
	return validatorInstance
}

func orDefault(msg, def string) string {
	if msg != "" {
		return msg
	}
	return def
}

// All chains rules and reports the first failure.
func All(rules ...ValidateFunc) ValidateFunc {
	return func(v Value, all Values) string {
		for _, rule := range rules {
			if rule == nil {
				continue
			}
			if msg := rule(v, all); msg != "" {
				return msg
			}
		}
		return ""
	}
}

// Digits requires exactly n ASCII digits.
func Digits(n int, msg string) ValidateFunc {
	msg = orDefault(msg, fmt.Sprintf("Enter exactly %d digits", n))
	return func(v Value, _ Values) string {
		if IsEmpty(v) {
			return ""
		}
		s := Stringify(v)
		if len(s) != n || keepDigits(s) != s {
			return msg
		}
		return ""
	}
}

// MinLength requires at least n characters.
func MinLength(n int, msg string) ValidateFunc {
	msg = orDefault(msg, fmt.Sprintf("Must be at least %d characters", n))
	return func(v Value, _ Values) string {
		if IsEmpty(v) {
			return ""
		}
		if utf8.RuneCountInString(Stringify(v)) < n {
			return msg
		}
		return ""
	}
}

// MaxLength allows at most n characters.
func MaxLength(n int, msg string) ValidateFunc {
	msg = orDefault(msg, fmt.Sprintf("Must be at most %d characters", n))
	return func(v Value, _ Values) string {
		if utf8.RuneCountInString(Stringify(v)) > n {
			return msg
		}
		return ""
	}
}

// Equals requires the value to match the field named other, e.g. a password
// confirmation.
func Equals(other, msg string) ValidateFunc {
	msg = orDefault(msg, fmt.Sprintf("Must match %s", other))
	return func(v Value, all Values) string {
		if IsEmpty(v) {
			return ""
		}
		if Stringify(v) != Stringify(all[other]) {
			return msg
		}
		return ""
	}
}

// RequiredIf makes a field mandatory while the field named other holds want,
// e.g. a rejection reason.
func RequiredIf(other, want, msg string) ValidateFunc {
	msg = orDefault(msg, RequiredMessage)
	return func(v Value, all Values) string {
		if IsBlank(v) && Stringify(all[other]) == want {
			return msg
		}
		return ""
	}
}

// Email requires a syntactically valid email address.
func Email(msg string) ValidateFunc {
	msg = orDefault(msg, "Enter a valid email address")
	return tagRule("email", msg)
}

// Phone requires an E.164 phone number (for example +77011234567).
func Phone(msg string) ValidateFunc {
	msg = orDefault(msg, "Enter a phone number in international format")
	return tagRule("e164", msg)
}

func tagRule(tag, msg string) ValidateFunc {
	return func(v Value, _ Values) string {
		if IsEmpty(v) {
			return ""
		}
		if err := getValidator().Var(Stringify(v), tag); err != nil {
			return msg
		}
		return ""
	}
}

// Range requires a number within [lo, hi].
func Range(lo, hi float64, msg string) ValidateFunc {
	msg = orDefault(msg, fmt.Sprintf("Must be between %g and %g", lo, hi))
	return func(v Value, _ Values) string {
		n, ok := v.(float64)
		if !ok {
			return ""
		}
		if n < lo || n > hi {
			return msg
		}
		return ""
	}
}

// Min requires a number no smaller than lo.
func Min(lo float64, msg string) ValidateFunc {
	msg = orDefault(msg, fmt.Sprintf("Must be at least %g", lo))
	return func(v Value, _ Values) string {
		n, ok := v.(float64)
		if !ok {
			return ""
		}
		if n < lo {
			return msg
		}
		return ""
	}
}

// OneOf restricts the value to the listed choices.
func OneOf(choices []string, msg string) ValidateFunc {
	choices = slices.Clone(choices)
	msg = orDefault(msg, "Choose one of: "+strings.Join(choices, ", "))
	return func(v Value, _ Values) string {
		if IsEmpty(v) {
			return ""
		}
		if !slices.Contains(choices, Stringify(v)) {
			return msg
		}
		return ""
	}
}
