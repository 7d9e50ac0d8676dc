// internal/params/resolve.go
package params

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/solatis/roundsapi/internal/types"
)

/*
 * Parameter resolution.
 *
 * Evaluates a compiled Spec against one request's Input, level by level:
 *   1. Pure pass: for each field of the level, in declaration order, apply
 *      required/default rules, the Type's coercion, the declared Validators
 *      and Relations. Pure work never blocks.
 *   2. Effectful pass: the level's Checks run concurrently and are joined
 *      before the next level starts.
 *
 * Failure policy: the first error anywhere aborts the request. In the
 * effectful pass the first failing Check cancels the shared context so its
 * siblings can stop early; its error is the one surfaced. No partial result
 * is ever returned with an error.
 */

type pendingCheck struct {
	field string
	value any
	check Check
}

// Resolve validates in against the Spec and returns the typed values.
// Absent optional fields resolve to nil.
func (s *Spec) Resolve(ctx context.Context, in Input) (Values, error) {
	values := make(Values, len(s.fields))

	for _, level := range s.levels {
		var checks []pendingCheck

		for _, idx := range level {
			f := &s.fields[idx]
			v, err := f.evaluate(in.Params, values)
			if err != nil {
				return nil, err
			}
			values[f.Name] = v

			if f.Check != nil && (v != nil || f.Virtual) {
				checks = append(checks, pendingCheck{field: f.Name, value: v, check: f.Check})
			}
		}

		in.Resolved = values
		if err := runChecks(ctx, in, checks); err != nil {
			return nil, err
		}
	}

	return values, nil
}

// runChecks executes a level's effectful checks and joins them.
func runChecks(ctx context.Context, in Input, checks []pendingCheck) error {
	switch len(checks) {
	case 0:
		return nil
	case 1:
		c := checks[0]
		return c.check(ctx, in, c.field, c.value)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range checks {
		c := c
		g.Go(func() error {
			return c.check(gctx, in, c.field, c.value)
		})
	}
	return g.Wait()
}

// evaluate runs the pure part of a field: presence rules, coercion,
// validators and relations.
func (f *FieldSpec) evaluate(raw map[string]any, resolved Values) (any, error) {
	if f.Virtual {
		return nil, nil
	}

	value, present := raw[f.Name]
	if !present || isAbsent(value) {
		if f.Required {
			return nil, types.InvalidArgument(f.Name, "%s is required", f.Name)
		}
		for _, other := range f.RequiredWith {
			if resolved[other] != nil {
				return nil, types.InvalidArgument(f.Name, "%s is required when %s is present", f.Name, other)
			}
		}
		return f.Default, nil
	}

	var err error
	for _, validate := range f.Type.baseValidators() {
		if value, err = validate(f.Name, value); err != nil {
			return nil, err
		}
	}
	for _, validate := range f.Validators {
		if value, err = validate(f.Name, value); err != nil {
			return nil, err
		}
	}

	for _, r := range f.Relations {
		other := resolved[r.With]
		if other == nil {
			continue
		}
		if err := r.Check(f.Name, value, r.With, other); err != nil {
			return nil, err
		}
	}

	return value, nil
}
