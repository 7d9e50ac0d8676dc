package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/solatis/roundsapi/internal/params"
	"github.com/solatis/roundsapi/internal/types"
)

// Env is the immutable per-request composition context. The store time zone
// is resolved once from configuration and threaded through here.
type Env struct {
	Location *time.Location
	Now      time.Time
}

// Transform turns a resolved parameter value into bind arguments.
type Transform func(value any, env Env) ([]any, error)

// FilterClause binds an optional parameter to a predicate fragment. The
// predicate is spliced at the clause's marker only when the parameter is
// present. A predicate with a single "{?}" expands it to one placeholder per
// argument; a predicate with several takes one argument per "{?}".
type FilterClause struct {
	Param     string
	Marker    string // defaults to Param
	Predicate string
	Transform Transform
}

func (c FilterClause) marker() string {
	if c.Marker != "" {
		return c.Marker
	}
	return c.Param
}

// ApplyFilters sets the fragment of every clause whose parameter is present.
// Present clauses AND together through their predicates.
func ApplyFilters(b *Builder, clauses []FilterClause, values params.Values, env Env) error {
	for _, c := range clauses {
		v := values[c.Param]
		if v == nil || !b.HasMarker(c.marker()) {
			continue
		}
		transform := c.Transform
		if transform == nil {
			transform = Bind()
		}
		args, err := transform(v, env)
		if err != nil {
			return fmt.Errorf("filter %s: %w", c.Param, err)
		}
		if len(args) == 0 {
			continue
		}
		text, err := expand(c.Predicate, len(args))
		if err != nil {
			return fmt.Errorf("filter %s: %w", c.Param, err)
		}
		b.Set(c.marker(), text, args...)
	}
	return nil
}

func expand(predicate string, n int) (string, error) {
	switch slots := strings.Count(predicate, "{?}"); slots {
	case 1:
		return strings.Replace(predicate, "{?}", placeholders(n), 1), nil
	case n:
		return strings.ReplaceAll(predicate, "{?}", "?"), nil
	default:
		return "", fmt.Errorf("predicate has %d slots for %d arguments", slots, n)
	}
}

// Bind passes the value through as a single argument.
func Bind() Transform {
	return func(value any, _ Env) ([]any, error) {
		return []any{value}, nil
	}
}

// LowerList binds each list element trimmed and lower-cased, for IN (...).
func LowerList() Transform {
	return func(value any, _ Env) ([]any, error) {
		list, ok := value.([]string)
		if !ok {
			return nil, fmt.Errorf("expected list, got %T", value)
		}
		args := make([]any, 0, len(list))
		for _, e := range list {
			args = append(args, strings.ToLower(strings.TrimSpace(e)))
		}
		return args, nil
	}
}

// Codes maps each list label through table before binding.
func Codes(table map[string]int64) Transform {
	return func(value any, _ Env) ([]any, error) {
		list, ok := value.([]string)
		if !ok {
			return nil, fmt.Errorf("expected list, got %T", value)
		}
		args := make([]any, 0, len(list))
		for _, label := range list {
			code, ok := table[strings.ToLower(strings.TrimSpace(label))]
			if !ok {
				return nil, fmt.Errorf("no code for %q", label)
			}
			args = append(args, code)
		}
		return args, nil
	}
}

// StoreTime renders a date as the store's literal in the configured zone.
func StoreTime() Transform {
	return func(value any, env Env) ([]any, error) {
		t, ok := value.(time.Time)
		if !ok {
			return nil, fmt.Errorf("expected date, got %T", value)
		}
		loc := env.Location
		if loc == nil {
			loc = time.UTC
		}
		return []any{t.In(loc).Format(types.StoreDateFormat)}, nil
	}
}

// likeEscape is the ESCAPE character predicates pair with Contains.
const likeEscape = "!"

// Contains binds a case-insensitive substring pattern. Predicates use it as
// LOWER(col) LIKE {?} ESCAPE '!'. A doubled double quote stands for one
// literal quote, as QuoteSafe accepts it.
func Contains() Transform {
	escaper := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return func(value any, _ Env) ([]any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected text, got %T", value)
		}
		s = strings.ReplaceAll(s, `""`, `"`)
		return []any{"%" + escaper.Replace(strings.ToLower(s)) + "%"}, nil
	}
}

// NowIf binds the request time, as a store literal, once per slot when the
// value equals want; otherwise the clause is skipped. It selects among
// clauses sharing one enum parameter.
func NowIf(want string, slots int) Transform {
	return func(value any, env Env) ([]any, error) {
		if s, _ := value.(string); s != want {
			return nil, nil
		}
		loc := env.Location
		if loc == nil {
			loc = time.UTC
		}
		now := env.Now.In(loc).Format(types.StoreDateFormat)
		args := make([]any, slots)
		for i := range args {
			args[i] = now
		}
		return args, nil
	}
}

// Fraction binds an integer percentage as a stored fraction.
func Fraction() Transform {
	return func(value any, _ Env) ([]any, error) {
		n, ok := value.(int64)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %T", value)
		}
		return []any{float64(n) / 100}, nil
	}
}
