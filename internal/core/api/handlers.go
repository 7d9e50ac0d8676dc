package api

import (
	"context"
	"net/http"

	"github.com/solatis/roundsapi/internal/params"
)

// successBody is the response of writes that return no identifier.
type successBody struct {
	Success bool `json:"success"`
}

// createdContest is the response of contest creation.
type createdContest struct {
	ContestID int64 `json:"contestId"`
}

// serve adapts an endpoint call to an http.HandlerFunc.
func serve[T any](call func(context.Context, params.Input) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := input(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out, err := call(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

// succeed adapts a write without a result.
func succeed(call func(context.Context, params.Input) error) http.HandlerFunc {
	return serve(func(ctx context.Context, in params.Input) (successBody, error) {
		if err := call(ctx, in); err != nil {
			return successBody{}, err
		}
		return successBody{Success: true}, nil
	})
}

// Challenges handles GET /challenges.
func (h *Handler) Challenges(w http.ResponseWriter, r *http.Request) {
	serve(h.rounds.SearchChallenges)(w, r)
}

// Schedule handles GET /schedule.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	serve(h.rounds.SearchSchedule)(w, r)
}

// PracticeProblems handles GET /practice/problems.
func (h *Handler) PracticeProblems(w http.ResponseWriter, r *http.Request) {
	serve(h.rounds.SearchPracticeProblems)(w, r)
}

// ProblemRounds handles GET /problems/{problemId}/rounds.
func (h *Handler) ProblemRounds(w http.ResponseWriter, r *http.Request) {
	serve(h.rounds.ProblemRounds)(w, r)
}

// Round handles GET /rounds/{roundId}.
func (h *Handler) Round(w http.ResponseWriter, r *http.Request) {
	serve(h.rounds.GetRound)(w, r)
}

// Contests handles GET /contests.
func (h *Handler) Contests(w http.ResponseWriter, r *http.Request) {
	serve(h.rounds.ListContests)(w, r)
}

// CreateContest handles POST /contests.
func (h *Handler) CreateContest(w http.ResponseWriter, r *http.Request) {
	serve(func(ctx context.Context, in params.Input) (createdContest, error) {
		id, err := h.rounds.CreateContest(ctx, in)
		return createdContest{ContestID: id}, err
	})(w, r)
}

// UpdateContest handles PUT /contests/{contestId}.
func (h *Handler) UpdateContest(w http.ResponseWriter, r *http.Request) {
	succeed(h.rounds.UpdateContest)(w, r)
}

// AssignRoom handles POST /rounds/{roundId}/rooms.
func (h *Handler) AssignRoom(w http.ResponseWriter, r *http.Request) {
	succeed(h.rounds.AssignRoom)(w, r)
}

// SetRoundLanguages handles POST /rounds/{roundId}/languages.
func (h *Handler) SetRoundLanguages(w http.ResponseWriter, r *http.Request) {
	succeed(h.rounds.SetRoundLanguages)(w, r)
}

// SetRoundEvent handles POST /rounds/{roundId}/events.
func (h *Handler) SetRoundEvent(w http.ResponseWriter, r *http.Request) {
	succeed(h.rounds.SetRoundEvent)(w, r)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.rounds.Ping(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
