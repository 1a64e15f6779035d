package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carmarket/carmarket/internal/form"
)

// now is swapped in tests.
var now = time.Now

// ParseRule turns a rule spec such as "digits:6" or "range:1980:next_year"
// into a validator. msg overrides the rule's default message.
//
//	digits:N            exactly N digits
//	min_len:N           at least N characters
//	max_len:N           at most N characters
//	equals:KEY          same value as field KEY
//	required_if:KEY:V   required while field KEY equals V
//	email               email address
//	phone               E.164 phone number
//	range:LO:HI         number within [LO, HI]; HI may be next_year
//	min:LO              number >= LO
//	one_of:A|B|C        one of the listed values
func ParseRule(spec, msg string) (form.ValidateFunc, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(spec), ":")
	switch name {
	case "digits":
		n, err := positiveInt(arg)
		if err != nil {
			return nil, ruleErr(spec, err)
		}
		return form.Digits(n, msg), nil
	case "min_len":
		n, err := positiveInt(arg)
		if err != nil {
			return nil, ruleErr(spec, err)
		}
		return form.MinLength(n, msg), nil
	case "max_len":
		n, err := positiveInt(arg)
		if err != nil {
			return nil, ruleErr(spec, err)
		}
		return form.MaxLength(n, msg), nil
	case "equals":
		if arg == "" {
			return nil, ruleErr(spec, fmt.Errorf("missing field"))
		}
		return form.Equals(arg, msg), nil
	case "required_if":
		key, want, ok := strings.Cut(arg, ":")
		if !ok || key == "" {
			return nil, ruleErr(spec, fmt.Errorf("want required_if:FIELD:VALUE"))
		}
		return form.RequiredIf(key, want, msg), nil
	case "email":
		return form.Email(msg), nil
	case "phone":
		return form.Phone(msg), nil
	case "range":
		lo, hi, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, ruleErr(spec, fmt.Errorf("want range:LO:HI"))
		}
		l, err := bound(lo)
		if err != nil {
			return nil, ruleErr(spec, err)
		}
		h, err := bound(hi)
		if err != nil {
			return nil, ruleErr(spec, err)
		}
		if l > h {
			return nil, ruleErr(spec, fmt.Errorf("empty range"))
		}
		return form.Range(l, h, msg), nil
	case "min":
		l, err := bound(arg)
		if err != nil {
			return nil, ruleErr(spec, err)
		}
		return form.Min(l, msg), nil
	case "one_of":
		if arg == "" {
			return nil, ruleErr(spec, fmt.Errorf("no choices"))
		}
		return form.OneOf(strings.Split(arg, "|"), msg), nil
	}
	return nil, ruleErr(spec, fmt.Errorf("unknown rule"))
}

func ruleErr(spec string, err error) error {
	return fmt.Errorf("rule %q: %w", spec, err)
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}

func bound(s string) (float64, error) {
	if s == "next_year" {
		return float64(now().Year() + 1), nil
	}
	return strconv.ParseFloat(s, 64)
}
