package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solatis/roundsapi/internal/core/auth"
	"github.com/solatis/roundsapi/internal/metrics"
	"github.com/solatis/roundsapi/internal/types"
)

// BasePath prefixes every data endpoint.
const BasePath = "/v2/data/srm"

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// Auth resolves bearer tokens. Nil treats every caller as anonymous.
	Auth *auth.Authenticator

	// Metrics records requests and is served at /metrics when set.
	Metrics *metrics.Metrics

	// RequestTimeout bounds each data request's context. Zero disables it.
	RequestTimeout time.Duration
}

// NewRouter configures all HTTP routes.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	authenticator := opts.Auth
	if authenticator == nil {
		authenticator = auth.NewAuthenticator(nil)
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(observe(opts.Metrics))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, types.NotFound("", "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, types.NotFound("", "no route for %s %s", r.Method, r.URL.Path))
	})

	r.Get("/healthz", h.Health)
	if opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Route(BasePath, func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(opts.RequestTimeout))
		}
		r.Use(authenticator.Middleware(writeError))

		r.Get("/challenges", h.Challenges)
		r.Get("/schedule", h.Schedule)
		r.Get("/practice/problems", h.PracticeProblems)
		r.Get("/problems/{problemId}/rounds", h.ProblemRounds)
		r.Get("/rounds/{roundId}", h.Round)
		r.Post("/rounds/{roundId}/rooms", h.AssignRoom)
		r.Post("/rounds/{roundId}/languages", h.SetRoundLanguages)
		r.Post("/rounds/{roundId}/events", h.SetRoundEvent)
		r.Get("/contests", h.Contests)
		r.Post("/contests", h.CreateContest)
		r.Put("/contests/{contestId}", h.UpdateContest)
	})

	return r
}
