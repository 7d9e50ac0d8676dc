// Package write sequences admin mutations.
//
// A Plan is an ordered list of Steps run after parameter resolution has
// succeeded. Each step is expected to be atomic on its own; the plan is not
// a transaction. The first failing step aborts the rest and its error is
// the plan's error, with no partial-success report.
package write

import (
	"context"
	"fmt"
	"time"

	"github.com/solatis/roundsapi/internal/logging"
)

// Step is one store mutation in a Plan.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Plan is a named sequence of Steps.
type Plan struct {
	Name  string
	Steps []Step
}

// Then appends a step and returns the plan.
func (p Plan) Then(name string, run func(ctx context.Context) error) Plan {
	p.Steps = append(p.Steps[:len(p.Steps):len(p.Steps)], Step{Name: name, Run: run})
	return p
}

// StepNames lists the plan's steps in execution order.
func (p Plan) StepNames() []string {
	names := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		names[i] = s.Name
	}
	return names
}

// Execute runs the steps in order, stopping at the first failure.
func (p Plan) Execute(ctx context.Context) error {
	log := logging.Ctx(ctx)
	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}

		start := time.Now()
		err := step.Run(ctx)
		log.Debug().
			Str("plan", p.Name).
			Str("step", step.Name).
			Int("index", i).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("write step")
		if err != nil {
			return fmt.Errorf("%s: %s: %w", p.Name, step.Name, err)
		}
	}
	return nil
}
