// Package api exposes the round data endpoints over HTTP.
package api

import (
	"context"
	"fmt"

	"github.com/solatis/roundsapi/internal/params"
	"github.com/solatis/roundsapi/internal/query"
	"github.com/solatis/roundsapi/internal/rounds"
)

// Rounds is the endpoint surface served by the handlers. Implemented by
// *rounds.Service.
type Rounds interface {
	Ping(ctx context.Context) error

	SearchChallenges(ctx context.Context, in params.Input) (query.Envelope[rounds.Challenge], error)
	SearchSchedule(ctx context.Context, in params.Input) (query.Envelope[rounds.ScheduledRound], error)
	SearchPracticeProblems(ctx context.Context, in params.Input) (query.Envelope[rounds.PracticeProblem], error)
	ProblemRounds(ctx context.Context, in params.Input) (query.Envelope[rounds.ProblemRound], error)
	ListContests(ctx context.Context, in params.Input) (query.Envelope[rounds.Contest], error)
	GetRound(ctx context.Context, in params.Input) (*rounds.Round, error)

	CreateContest(ctx context.Context, in params.Input) (int64, error)
	UpdateContest(ctx context.Context, in params.Input) error
	AssignRoom(ctx context.Context, in params.Input) error
	SetRoundLanguages(ctx context.Context, in params.Input) error
	SetRoundEvent(ctx context.Context, in params.Input) error
}

// Handler serves the HTTP endpoints.
// Thin orchestration layer: flattens the request, calls Rounds, renders the
// result or the error.
type Handler struct {
	rounds Rounds
}

// NewHandler creates a handler over the given endpoint implementation.
func NewHandler(r Rounds) (*Handler, error) {
	if r == nil {
		return nil, fmt.Errorf("rounds cannot be nil")
	}
	return &Handler{rounds: r}, nil
}
