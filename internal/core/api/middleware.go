package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/solatis/roundsapi/internal/logging"
	"github.com/solatis/roundsapi/internal/metrics"
	"github.com/solatis/roundsapi/internal/types"
)

// RequestIDHeader carries the request correlation identifier both ways.
const RequestIDHeader = "X-Request-ID"

// requestID accepts a caller-supplied UUID or assigns a fresh UUIDv7, echoes
// it in the response and stores it in the context for logging.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := types.ParseRequestID(r.Header.Get(RequestIDHeader))
		if err != nil {
			id = types.NewRequestID()
		}
		w.Header().Set(RequestIDHeader, string(id))
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// observe logs every request and records it in m under its route pattern.
func observe(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			endpoint := routePattern(r)

			m.RecordRequest(endpoint, outcome(status), elapsed)
			logging.Ctx(r.Context()).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("endpoint", endpoint).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", elapsed).
				Msg("request")
		})
	}
}

// routePattern is the matched chi pattern, which keeps metric label
// cardinality bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// outcome names a response status for the requests counter.
func outcome(status int) string {
	switch status {
	case http.StatusBadRequest:
		return types.KindInvalidArgument.String()
	case http.StatusUnauthorized:
		return types.KindUnauthenticated.String()
	case http.StatusForbidden:
		return types.KindForbidden.String()
	case http.StatusNotFound:
		return types.KindNotFound.String()
	case http.StatusServiceUnavailable:
		return types.KindUnavailable.String()
	}
	if status >= 500 {
		return types.KindInternal.String()
	}
	return "ok"
}
