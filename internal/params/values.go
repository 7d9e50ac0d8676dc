package params

import "time"

// Values holds the typed result of a resolved request. Absent optional
// fields are present with a nil value.
type Values map[string]any

// Has reports whether name resolved to a non-nil value.
func (v Values) Has(name string) bool {
	return v[name] != nil
}

// Int returns the integer value of name and whether it was present.
func (v Values) Int(name string) (int64, bool) {
	n, ok := v[name].(int64)
	return n, ok
}

// IntOr returns the integer value of name, or def when absent.
func (v Values) IntOr(name string, def int64) int64 {
	if n, ok := v.Int(name); ok {
		return n
	}
	return def
}

// String returns the string value of name, or "" when absent.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Time returns the date value of name and whether it was present.
func (v Values) Time(name string) (time.Time, bool) {
	t, ok := v[name].(time.Time)
	return t, ok
}

// Strings returns the list value of name, or nil when absent.
func (v Values) Strings(name string) []string {
	s, _ := v[name].([]string)
	return s
}

// Ints returns the integer list value of name, or nil when absent.
func (v Values) Ints(name string) []int64 {
	n, _ := v[name].([]int64)
	return n
}

// With returns a copy of v with name set to value. Services use it to add
// request-derived values, such as the caller's id, that filters bind.
func (v Values) With(name string, value any) Values {
	out := make(Values, len(v)+1)
	for k, x := range v {
		out[k] = x
	}
	out[name] = value
	return out
}
