package api

import (
	"errors"
	"net/http"

	"github.com/solatis/roundsapi/internal/logging"
	"github.com/solatis/roundsapi/internal/types"
)

// errorBody is the single error object every failure renders.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind types.Kind) int {
	switch kind {
	case types.KindInvalidArgument:
		return http.StatusBadRequest
	case types.KindUnauthenticated:
		return http.StatusUnauthorized
	case types.KindForbidden:
		return http.StatusForbidden
	case types.KindNotFound:
		return http.StatusNotFound
	case types.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Internal and unavailable causes are logged but
// never shown to the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *types.Error
	if !errors.As(err, &e) {
		e = types.Internal(err)
	}

	switch e.Kind {
	case types.KindInternal:
		logging.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	case types.KindUnavailable:
		logging.Ctx(r.Context()).Warn().Err(err).Msg("store unavailable")
	}

	writeJSON(w, r, statusFor(e.Kind), errorBody{Error: errorDetail{
		Kind:    e.Kind.String(),
		Field:   e.Field,
		Message: e.Error(),
	}})
}
