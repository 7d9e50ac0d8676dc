package rounds

import (
	"context"
	"fmt"

	"github.com/solatis/roundsapi/internal/core/db"
	"github.com/solatis/roundsapi/internal/logging"
	"github.com/solatis/roundsapi/internal/params"
	"github.com/solatis/roundsapi/internal/types"
	"github.com/solatis/roundsapi/internal/write"
)

// exec adapts a named statement to a plan step.
func (s *Service) exec(name string, args ...any) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.store.Exec(ctx, name, args...)
		return err
	}
}

// run executes a plan, reporting store failures as internal errors.
func run(ctx context.Context, p write.Plan) error {
	if err := p.Execute(ctx); err != nil {
		return types.Internal(err)
	}
	return nil
}

// contestColumns returns the descriptive contest columns in the order the
// insert and update statements list them.
func (s *Service) contestColumns(v params.Values) []any {
	return []any{
		v.String("name"),
		s.storeTime(v, "startDate"),
		s.storeTime(v, "endDate"),
		nullable(v, "status"),
		nullable(v, "groupId"),
		nullable(v, "adText"),
		s.storeTime(v, "adStart"),
		s.storeTime(v, "adEnd"),
		nullable(v, "activateMenu"),
		nullable(v, "seasonId"),
	}
}

// CreateContest adds a contest under a fresh identifier and returns it.
func (s *Service) CreateContest(ctx context.Context, in params.Input) (int64, error) {
	values, err := s.resolve(ctx, s.catalog.createContest, in)
	if err != nil {
		return 0, err
	}

	var id int64
	plan := write.Plan{Name: "create contest"}.
		Then("allocate id", func(ctx context.Context) error {
			next, err := s.store.NextID(ctx, db.ContestSequence)
			id = next
			return err
		}).
		Then("insert", func(ctx context.Context) error {
			args := append([]any{id}, s.contestColumns(values)...)
			_, err := s.store.Exec(ctx, "insert-contest", args...)
			return err
		})
	if err := run(ctx, plan); err != nil {
		return 0, err
	}

	logging.Ctx(ctx).Info().Int64("contestId", id).Msg("contest created")
	return id, nil
}

// UpdateContest rewrites a contest. When the request carries an id other
// than the contest's current one, the contest moves to that id and its
// rounds follow.
func (s *Service) UpdateContest(ctx context.Context, in params.Input) error {
	values, err := s.resolve(ctx, s.catalog.updateContest, in)
	if err != nil {
		return err
	}

	current, _ := values.Int(fieldContestID)
	identity := write.Identity{Current: current, Desired: values.IntOr("id", current)}
	columns := s.contestColumns(values)

	plan := write.UpdatePlan("update contest", identity, write.Rekey{
		Copy: func(ctx context.Context, from, to int64) error {
			return s.exec("copy-contest", to, from)(ctx)
		},
		Update: func(ctx context.Context, id int64) error {
			return s.exec("update-contest", append(columns, id)...)(ctx)
		},
		Relink: func(ctx context.Context, from, to int64) error {
			return s.exec("relink-contest-rounds", to, from)(ctx)
		},
		Delete: func(ctx context.Context, id int64) error {
			return s.exec("delete-contest", id)(ctx)
		},
	})
	if err := run(ctx, plan); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Int64("contestId", current).
		Int64("newContestId", identity.Target()).
		Msg("contest updated")
	return nil
}

// AssignRoom places a coder in a room of a round.
func (s *Service) AssignRoom(ctx context.Context, in params.Input) error {
	values, err := s.resolve(ctx, s.catalog.assignRoom, in)
	if err != nil {
		return err
	}
	roundID, _ := values.Int(fieldRoundID)
	roomID, _ := values.Int("roomId")
	coderID, _ := values.Int(fieldCoderID)

	return run(ctx, write.Plan{Name: "assign room"}.
		Then("insert room result", s.exec("insert-room-result", roundID, roomID, coderID)))
}

// SetRoundLanguages replaces the languages allowed in a round.
func (s *Service) SetRoundLanguages(ctx context.Context, in params.Input) error {
	values, err := s.resolve(ctx, s.catalog.setLanguages, in)
	if err != nil {
		return err
	}
	roundID, _ := values.Int(fieldRoundID)

	plan := write.Plan{Name: "set round languages"}.
		Then("delete languages", s.exec("delete-round-languages", roundID))
	for _, lang := range dedupe(values.Ints("languages")) {
		plan = plan.Then(fmt.Sprintf("insert language %d", lang), s.exec("insert-round-language", roundID, lang))
	}
	return run(ctx, plan)
}

// SetRoundEvent replaces the registration event of a round.
func (s *Service) SetRoundEvent(ctx context.Context, in params.Input) error {
	values, err := s.resolve(ctx, s.catalog.setEvent, in)
	if err != nil {
		return err
	}
	roundID, _ := values.Int(fieldRoundID)
	eventID, _ := values.Int("eventId")

	return run(ctx, write.Plan{Name: "set round event"}.
		Then("delete event", s.exec("delete-round-event", roundID)).
		Then("insert event", s.exec("insert-round-event", roundID, eventID, values.String("eventName"), nullable(values, "registrationUrl"))))
}

// dedupe drops repeated values, keeping first occurrences in order.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
