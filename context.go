package rvdispatch

import (
	"context"
	"log/slog"

	"github.com/spiceqa/rvdispatch/resolver"
)

// Context helpers for passing dispatch state to implementations.
type dispatchContextKey struct {
	name string
}

var (
	matchContextKey  = &dispatchContextKey{name: "match"}
	loggerContextKey = &dispatchContextKey{name: "logger"}
)

// WithMatch records the resolution that selected the running implementation.
func WithMatch(ctx context.Context, m resolver.Match) context.Context {
	return context.WithValue(ctx, matchContextKey, m)
}

// MatchFromContext returns the resolution recorded by the Invoker.
func MatchFromContext(ctx context.Context) (resolver.Match, bool) {
	m, ok := ctx.Value(matchContextKey).(resolver.Match)
	return m, ok
}

// ContextWithLogger embeds a logger for implementations to use.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

func hasLogger(ctx context.Context) bool {
	logger, ok := ctx.Value(loggerContextKey).(*slog.Logger)
	return ok && logger != nil
}

// LoggerFromContext returns the embedded logger, or slog.Default().
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
