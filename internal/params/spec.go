// internal/params/spec.go
package params

import (
	"context"
	"fmt"
	"slices"

	"github.com/solatis/roundsapi/internal/types"
)

/*
 * Field specification compilation.
 *
 * Compiles an endpoint's FieldSpecs into a Spec: a validated dependency DAG
 * split into topological levels. Compilation happens once, when the endpoint
 * table is built at startup; a Spec is immutable afterwards and shared by
 * every request.
 *
 * Compilation workflow:
 *   1. Reject duplicate names and dependencies on undeclared fields
 *   2. Fold Relation.With and RequiredWith names into the dependency set
 *   3. Kahn's algorithm over the DAG, emitting one level per wave
 *   4. Within a level, keep declaration order (stable, deterministic errors)
 *
 * A cycle or unknown dependency is a programming error in the endpoint
 * table, not a request condition, so NewSpec panics like regexp.MustCompile.
 */

// Input is the raw material of one request: the flat parameter map and the
// calling principal.
type Input struct {
	Params    map[string]any
	Principal types.Principal

	// Resolved is filled in by the resolver before Checks run: every field
	// of earlier levels and the pure results of the current one. Checks
	// must treat it as read-only.
	Resolved Values
}

// Check is an effectful, I/O-bound validator such as an existence lookup or
// a permission check. Checks of one level may run concurrently; none starts
// before every field it depends on has resolved.
type Check func(ctx context.Context, in Input, field string, value any) error

// FieldSpec declares one request field. Immutable once compiled.
type FieldSpec struct {
	Name     string
	Required bool
	Type     Type

	// Default is used when the raw value is absent. Defaults are trusted and
	// skip validation.
	Default any

	// Validators run in order after the Type's implied coercion.
	Validators []Validator

	// DependsOn names fields that must resolve successfully first.
	DependsOn []string

	// Relations compare this field with another, resolved, field.
	Relations []Relation

	// RequiredWith makes the field required when any named field is present.
	RequiredWith []string

	// Check runs after the pure validators, only when a value is present
	// (or always, for Virtual fields).
	Check Check

	// Virtual fields carry no raw value; they exist for their Check, e.g.
	// the admin permission gate.
	Virtual bool
}

// Spec is a compiled, immutable field DAG.
type Spec struct {
	fields []FieldSpec
	levels [][]int
}

// NewSpec compiles fields into a Spec. Panics on duplicate names, unknown
// dependencies or dependency cycles.
func NewSpec(fields ...FieldSpec) *Spec {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			panic("params: field with empty name")
		}
		if _, dup := index[f.Name]; dup {
			panic(fmt.Sprintf("params: duplicate field %q", f.Name))
		}
		index[f.Name] = i
	}

	compiled := make([]FieldSpec, len(fields))
	deps := make([][]int, len(fields))
	for i, f := range fields {
		names := slices.Clone(f.DependsOn)
		for _, r := range f.Relations {
			names = append(names, r.With)
		}
		names = append(names, f.RequiredWith...)

		for _, name := range names {
			j, ok := index[name]
			if !ok {
				panic(fmt.Sprintf("params: field %q depends on undeclared field %q", f.Name, name))
			}
			if j == i {
				panic(fmt.Sprintf("params: field %q depends on itself", f.Name))
			}
			if !slices.Contains(deps[i], j) {
				deps[i] = append(deps[i], j)
			}
		}
		f.DependsOn = names
		compiled[i] = f
	}

	return &Spec{fields: compiled, levels: topoLevels(compiled, deps)}
}

// topoLevels groups field indices into dependency waves using Kahn's
// algorithm. Panics if a cycle leaves fields unscheduled.
func topoLevels(fields []FieldSpec, deps [][]int) [][]int {
	remaining := make([]int, len(fields))
	dependents := make([][]int, len(fields))
	for i, ds := range deps {
		remaining[i] = len(ds)
		for _, d := range ds {
			dependents[d] = append(dependents[d], i)
		}
	}

	var levels [][]int
	var current []int
	for i := range fields {
		if remaining[i] == 0 {
			current = append(current, i)
		}
	}

	scheduled := 0
	for len(current) > 0 {
		levels = append(levels, current)
		scheduled += len(current)

		var next []int
		for _, i := range current {
			for _, d := range dependents[i] {
				remaining[d]--
				if remaining[d] == 0 {
					next = append(next, d)
				}
			}
		}
		// Declaration order within a wave keeps error selection deterministic.
		slices.Sort(next)
		current = next
	}

	if scheduled != len(fields) {
		var cyclic []string
		for i, n := range remaining {
			if n > 0 {
				cyclic = append(cyclic, fields[i].Name)
			}
		}
		panic(fmt.Sprintf("params: dependency cycle among %v", cyclic))
	}
	return levels
}

// Fields returns the compiled field names in declaration order.
func (s *Spec) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Levels returns the field names of each topological level.
func (s *Spec) Levels() [][]string {
	out := make([][]string, len(s.levels))
	for i, level := range s.levels {
		for _, idx := range level {
			out[i] = append(out[i], s.fields[idx].Name)
		}
	}
	return out
}
