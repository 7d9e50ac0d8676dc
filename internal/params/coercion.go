// internal/params/coercion.go
package params

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/solatis/roundsapi/internal/types"
)

/*
 * Raw value coercion.
 *
 * Request parameters arrive flatly typed: query strings yield string, JSON
 * bodies yield json.Number, string, bool, []any or nil. Coercion turns one
 * of those into the base Go type of a semantic field type before the field's
 * validators run.
 *
 * Type modes:
 *   - integer: strict - digits-only strings, json.Number and integral floats
 *     within +/- MaxSafeInteger; booleans and fractions rejected
 *   - text: lenient - numbers are rendered back to their decimal text
 *   - list: comma-delimited string or JSON array, each element trimmed
 *   - date: text parsed with the single wire format
 *
 * Absent values (missing key, nil, empty string) never reach coercion; the
 * resolver handles them through the required/default rules.
 */

// Type is the semantic type of a field. It selects the coercion applied
// before the field's own validators and may imply additional checks.
type Type int

const (
	// TypeNone marks a virtual field that carries no raw value.
	TypeNone Type = iota
	TypeInteger
	TypePositiveInteger
	// TypeBoundedInteger is a positive stored identifier, at most types.MaxInt.
	TypeBoundedInteger
	TypeEnumString
	TypeDate
	TypeFreeText
	TypeEnumArray
)

// baseValidators returns the validators implied by t, run ahead of the
// field's declared ones.
func (t Type) baseValidators() []Validator {
	switch t {
	case TypeInteger:
		return []Validator{Integer()}
	case TypePositiveInteger:
		return []Validator{Integer(), Positive()}
	case TypeBoundedInteger:
		return []Validator{Integer(), Positive(), Max(types.MaxInt)}
	case TypeEnumString, TypeFreeText:
		return []Validator{Text()}
	case TypeDate:
		return []Validator{Date()}
	case TypeEnumArray:
		return []Validator{List()}
	default:
		return nil
	}
}

// isAbsent reports whether a raw value counts as not supplied.
func isAbsent(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	default:
		return false
	}
}

// coerceInteger converts value to int64. Accepts int, int64, json.Number,
// integral float64 and decimal strings. Rejects booleans and fractions.
func coerceInteger(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.Abs(v) > types.MaxSafeInteger {
			return 0, false
		}
		return int64(v), true
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// coerceText renders value as a string. Lenient: numbers are formatted back
// to text, booleans are rejected because they never appear as text fields.
func coerceText(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

// coerceList splits value into trimmed elements. A string is treated as a
// comma-delimited list; arrays are coerced element-wise to text.
func coerceList(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out, nil
	case []string:
		out := make([]string, 0, len(v))
		for _, p := range v {
			out = append(out, strings.TrimSpace(p))
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, e := range v {
			s, ok := coerceText(e)
			if !ok {
				return nil, fmt.Errorf("element %d is not a scalar", i)
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, nil
	default:
		s, ok := coerceText(v)
		if !ok {
			return nil, fmt.Errorf("not a list")
		}
		return []string{strings.TrimSpace(s)}, nil
	}
}
