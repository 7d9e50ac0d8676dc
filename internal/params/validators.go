// internal/params/validators.go
package params

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/solatis/roundsapi/internal/types"
)

// Validator checks value for field and returns the (possibly converted)
// value handed to the next validator in the chain. Validators are pure: no
// I/O, no shared state, and they never block.
type Validator func(field string, value any) (any, error)

// wireFormatLabel is how WireDateFormat is spelled in error messages.
const wireFormatLabel = "yyyy-MM-ddTHH:mm:ss.SSSZ"

// Integer coerces to int64 and bounds the value by +/- MaxSafeInteger.
func Integer() Validator {
	return func(field string, value any) (any, error) {
		n, ok := coerceInteger(value)
		if !ok {
			return nil, types.InvalidArgument(field, "%s should be an integer", field)
		}
		if n > types.MaxSafeInteger || n < -types.MaxSafeInteger {
			return nil, types.InvalidArgument(field, "%s should be less or equal to %d", field, int64(types.MaxSafeInteger))
		}
		return n, nil
	}
}

// Max rejects integers greater than limit.
func Max(limit int64) Validator {
	return func(field string, value any) (any, error) {
		n, ok := value.(int64)
		if !ok {
			return nil, types.InvalidArgument(field, "%s should be an integer", field)
		}
		if n > limit {
			return nil, types.InvalidArgument(field, "%s should be less or equal to %d", field, limit)
		}
		return n, nil
	}
}

// Positive rejects integers below 1.
func Positive() Validator {
	return func(field string, value any) (any, error) {
		n, ok := value.(int64)
		if !ok || n < 1 {
			return nil, types.InvalidArgument(field, "%s should be positive", field)
		}
		return n, nil
	}
}

// NonNegative rejects integers below 0.
func NonNegative() Validator {
	return func(field string, value any) (any, error) {
		n, ok := value.(int64)
		if !ok || n < 0 {
			return nil, types.InvalidArgument(field, "%s should be non-negative", field)
		}
		return n, nil
	}
}

// OneOfInt requires an integer to be a member of allowed.
func OneOfInt(allowed ...int64) Validator {
	return func(field string, value any) (any, error) {
		n, ok := value.(int64)
		if !ok || !slices.Contains(allowed, n) {
			return nil, types.InvalidArgument(field, "%s should be an element of %s", field, joinInts(allowed))
		}
		return n, nil
	}
}

// Text coerces to string.
func Text() Validator {
	return func(field string, value any) (any, error) {
		s, ok := coerceText(value)
		if !ok {
			return nil, types.InvalidArgument(field, "%s should be a string", field)
		}
		return s, nil
	}
}

// Lower trims and lower-cases a string. It normalizes ahead of OneOf.
func Lower() Validator {
	return func(field string, value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, types.InvalidArgument(field, "%s should be a string", field)
		}
		return strings.ToLower(strings.TrimSpace(s)), nil
	}
}

// NotEmpty rejects strings that are empty after trimming.
func NotEmpty() Validator {
	return func(field string, value any) (any, error) {
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, types.InvalidArgument(field, "%s should be non-empty string", field)
		}
		return s, nil
	}
}

// MaxLength rejects strings longer than limit characters.
func MaxLength(limit int) Validator {
	return func(field string, value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, types.InvalidArgument(field, "%s should be a string", field)
		}
		if len([]rune(s)) > limit {
			return nil, types.InvalidArgument(field, "%s exceeds %d characters", field, limit)
		}
		return s, nil
	}
}

// QuoteSafe rejects a string holding a double quote that is not doubled.
// A pair of adjacent quotes is the escape for one literal quote.
func QuoteSafe() Validator {
	return func(field string, value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, types.InvalidArgument(field, "%s should be a string", field)
		}
		if HasUnescapedQuote(s) {
			return nil, types.InvalidArgument(field, "%s contains an unescaped double quote", field)
		}
		return s, nil
	}
}

// HasUnescapedQuote reports whether s contains a double quote that is not
// immediately followed by a second, escaping, double quote.
func HasUnescapedQuote(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '"' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '"' {
			i++
			continue
		}
		return true
	}
	return false
}

// OneOf requires a string to be an exact, case-sensitive member of allowed.
// Callers normalize first (see Lower).
func OneOf(allowed ...string) Validator {
	return func(field string, value any) (any, error) {
		s, ok := value.(string)
		if !ok || !slices.Contains(allowed, s) {
			return nil, types.InvalidArgument(field, "%s should be an element of %s", field, strings.Join(allowed, ","))
		}
		return s, nil
	}
}

// List coerces to []string, splitting comma-delimited text.
func List() Validator {
	return func(field string, value any) (any, error) {
		list, err := coerceList(value)
		if err != nil {
			return nil, types.InvalidArgument(field, "%s should be a comma-delimited list", field)
		}
		return list, nil
	}
}

// LowerEach lower-cases every element of a list.
func LowerEach() Validator {
	return func(field string, value any) (any, error) {
		list, ok := value.([]string)
		if !ok {
			return nil, types.InvalidArgument(field, "%s should be a comma-delimited list", field)
		}
		out := make([]string, len(list))
		for i, e := range list {
			out[i] = strings.ToLower(e)
		}
		return out, nil
	}
}

// SubsetOf requires every list element to be a member of allowed. The first
// unknown element is named in the error.
func SubsetOf(allowed ...string) Validator {
	return func(field string, value any) (any, error) {
		list, ok := value.([]string)
		if !ok {
			return nil, types.InvalidArgument(field, "%s should be a comma-delimited list", field)
		}
		for _, e := range list {
			if !slices.Contains(allowed, e) {
				return nil, types.InvalidArgument(field, "%s contains unknown element %q, should be a subset of %s", field, e, strings.Join(allowed, ","))
			}
		}
		return list, nil
	}
}

// IntSubsetOf converts list elements to integers and requires each to be a
// member of allowed. The first offending element is named in the error.
func IntSubsetOf(allowed ...int64) Validator {
	return func(field string, value any) (any, error) {
		list, ok := value.([]string)
		if !ok {
			return nil, types.InvalidArgument(field, "%s should be a comma-delimited list", field)
		}
		out := make([]int64, 0, len(list))
		for _, e := range list {
			n, err := strconv.ParseInt(e, 10, 64)
			if err != nil || !slices.Contains(allowed, n) {
				return nil, types.InvalidArgument(field, "%s contains unknown element %q, should be a subset of %s", field, e, joinInts(allowed))
			}
			out = append(out, n)
		}
		return out, nil
	}
}

// Date parses text under WireDateFormat into a time.Time.
func Date() Validator {
	return func(field string, value any) (any, error) {
		s, ok := coerceText(value)
		if !ok {
			return nil, types.InvalidArgument(field, "%s should be a date in format %s", field, wireFormatLabel)
		}
		t, err := time.Parse(types.WireDateFormat, strings.TrimSpace(s))
		if err != nil {
			return nil, types.InvalidArgument(field, "%s should be a date in format %s", field, wireFormatLabel)
		}
		return t, nil
	}
}

func joinInts(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

// Relation is a check between a field and another, already resolved, field.
// It only runs when both values are present.
type Relation struct {
	With  string
	Check func(field string, value any, with string, other any) error
}

// EarlierThan requires a date field not to be later than the date in with.
// An "after" bound is paired with its "before" bound this way.
func EarlierThan(with string) Relation {
	return Relation{With: with, Check: func(field string, value any, with string, other any) error {
		a, okA := value.(time.Time)
		b, okB := other.(time.Time)
		if okA && okB && a.After(b) {
			return types.InvalidArgument(field, "%s should be earlier than %s", field, with)
		}
		return nil
	}}
}

// NotEarlierThan requires a date field not to precede the date in with.
func NotEarlierThan(with string) Relation {
	return Relation{With: with, Check: func(field string, value any, with string, other any) error {
		a, okA := value.(time.Time)
		b, okB := other.(time.Time)
		if okA && okB && a.Before(b) {
			return types.InvalidArgument(field, "%s should not be earlier than %s", field, with)
		}
		return nil
	}}
}

// NotGreaterThan requires an integer lower bound not to exceed its upper
// bound in with.
func NotGreaterThan(with string) Relation {
	return Relation{With: with, Check: func(field string, value any, with string, other any) error {
		a, okA := value.(int64)
		b, okB := other.(int64)
		if okA && okB && a > b {
			return types.InvalidArgument(field, "%s should not be greater than %s", field, with)
		}
		return nil
	}}
}
