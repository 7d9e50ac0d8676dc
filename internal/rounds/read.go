package rounds

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/solatis/roundsapi/internal/metrics"
	"github.com/solatis/roundsapi/internal/params"
	"github.com/solatis/roundsapi/internal/query"
	"github.com/solatis/roundsapi/internal/types"
)

// search resolves in against e and runs its dataset.
func search[R any, T any](ctx context.Context, s *Service, e *endpoint, in params.Input, mapRow func(R) T, extra func(params.Values) params.Values) (query.Envelope[T], error) {
	values, err := s.resolve(ctx, e.spec, in)
	if err != nil {
		return query.Envelope[T]{}, err
	}
	if extra != nil {
		values = extra(values)
	}

	ctx = metrics.WithQuery(ctx, e.dataset.Name)
	env, err := query.Search(ctx, s.store, e.dataset, values, s.env(), s.opts.MaxPageSize, mapRow)
	if err != nil {
		return query.Envelope[T]{}, types.Internal(err)
	}
	return env, nil
}

// SearchChallenges lists rounds by lifecycle state and name.
func (s *Service) SearchChallenges(ctx context.Context, in params.Input) (query.Envelope[Challenge], error) {
	return search(ctx, s, s.catalog.challenges, in, s.challenge, nil)
}

// SearchSchedule lists rounds by status and phase date bounds.
func (s *Service) SearchSchedule(ctx context.Context, in params.Input) (query.Envelope[ScheduledRound], error) {
	return search(ctx, s, s.catalog.schedule, in, s.scheduledRound, nil)
}

// SearchPracticeProblems lists practice problems with the caller's progress.
func (s *Service) SearchPracticeProblems(ctx context.Context, in params.Input) (query.Envelope[PracticeProblem], error) {
	return search(ctx, s, s.catalog.practice, in, practiceProblem, func(v params.Values) params.Values {
		return v.With(fieldCoderID, in.Principal.UserID)
	})
}

// ProblemRounds lists the rounds a problem was used in.
func (s *Service) ProblemRounds(ctx context.Context, in params.Input) (query.Envelope[ProblemRound], error) {
	return search(ctx, s, s.catalog.problemRounds, in, s.problemRound, nil)
}

// ListContests lists contests for administrators.
func (s *Service) ListContests(ctx context.Context, in params.Input) (query.Envelope[Contest], error) {
	return search(ctx, s, s.catalog.contests, in, s.contest, nil)
}

// GetRound returns the detail of one round, with its phases, languages and
// event.
func (s *Service) GetRound(ctx context.Context, in params.Input) (*Round, error) {
	values, err := s.resolve(ctx, s.catalog.round, in)
	if err != nil {
		return nil, err
	}
	roundID, _ := values.Int(fieldRoundID)

	var row roundRow
	if err := s.store.Get(ctx, "get-round", &row, roundID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFound(fieldRoundID, "%s %d does not exist", fieldRoundID, roundID)
		}
		return nil, types.Internal(err)
	}

	var (
		segments  []segmentRow
		languages []int64
		events    []eventRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.store.Select(gctx, "list-round-segments", &segments, roundID) })
	g.Go(func() error { return s.store.Select(gctx, "list-round-languages", &languages, roundID) })
	g.Go(func() error { return s.store.Select(gctx, "get-round-event", &events, roundID) })
	if err := g.Wait(); err != nil {
		return nil, types.Internal(err)
	}

	round := &Round{
		RoundID:           row.RoundID,
		ContestID:         row.ContestID,
		ContestName:       missingContestName,
		Name:              row.Name,
		ShortName:         row.ShortName,
		RoundTypeID:       row.RoundTypeID,
		Status:            row.Status,
		RegistrationLimit: row.RegistrationLimit,
		Rated:             row.Rated != 0,
		Segments:          make([]Segment, 0, len(segments)),
		Languages:         languages,
	}
	if row.ContestName != nil && *row.ContestName != "" {
		round.ContestName = *row.ContestName
	}
	if round.Languages == nil {
		round.Languages = []int64{}
	}
	for _, seg := range segments {
		round.Segments = append(round.Segments, s.segment(seg))
	}
	if len(events) > 0 {
		round.Event = &Event{
			EventID:         events[0].EventID,
			EventName:       events[0].EventName,
			RegistrationURL: events[0].RegistrationURL,
		}
	}
	return round, nil
}
