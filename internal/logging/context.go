package logging

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/solatis/roundsapi/internal/types"
)

type contextKey struct{}

// ContextWithRequestID returns ctx carrying id.
func ContextWithRequestID(ctx context.Context, id types.RequestID) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// RequestIDFromContext returns the request ID carried by ctx, or "".
func RequestIDFromContext(ctx context.Context) types.RequestID {
	id, _ := ctx.Value(contextKey{}).(types.RequestID)
	return id
}

// Ctx returns the global logger with the request ID of ctx attached.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	if id := RequestIDFromContext(ctx); id != "" {
		l = l.With().Str("request_id", string(id)).Logger()
	}
	return &l
}
