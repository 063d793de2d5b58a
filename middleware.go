package rvdispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/spiceqa/rvdispatch/action"
)

// Middleware wraps a resolved implementation to add cross-cutting behavior.
// The first middleware given to WithMiddleware is the outermost layer.
//
// Example usage:
//
//	timing := func(next action.Func) action.Func {
//	    return func(ctx context.Context, vm action.VM, args ...any) (any, error) {
//	        start := time.Now()
//	        defer func() { log.Printf("took %s", time.Since(start)) }()
//	        return next(ctx, vm, args...)
//	    }
//	}
type Middleware func(next action.Func) action.Func

// LoggingMiddleware logs each invocation and its outcome. The error is logged,
// never altered.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next action.Func) action.Func {
		return func(ctx context.Context, vm action.VM, args ...any) (any, error) {
			attrs := invocationAttrs(ctx, vm)
			logger.Debug("invoking action", attrs...)

			start := time.Now()
			out, err := next(ctx, vm, args...)
			attrs = append(attrs, "duration", time.Since(start))
			if err != nil {
				logger.Warn("action failed", append(attrs, "error", err)...)
			} else {
				logger.Debug("action completed", attrs...)
			}
			return out, err
		}
	}
}

// PanicRecoveryMiddleware turns a panic inside an implementation into a *PanicError.
// It is opt-in; without it a panicking implementation crashes the caller.
func PanicRecoveryMiddleware() Middleware {
	return func(next action.Func) action.Func {
		return func(ctx context.Context, vm action.VM, args ...any) (out any, err error) {
			defer func() {
				if r := recover(); r != nil {
					name := ""
					if m, ok := MatchFromContext(ctx); ok {
						name = m.Action
					}
					out = nil
					err = NewPanicError(name, r)
				}
			}()
			return next(ctx, vm, args...)
		}
	}
}

// TimeoutMiddleware bounds each invocation's context. Implementations that
// honor ctx stop when the deadline passes. A non-positive d leaves
// invocations unbounded.
func TimeoutMiddleware(d time.Duration) Middleware {
	return func(next action.Func) action.Func {
		if d <= 0 {
			return next
		}
		return func(ctx context.Context, vm action.VM, args ...any) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, vm, args...)
		}
	}
}

func invocationAttrs(ctx context.Context, vm action.VM) []any {
	attrs := make([]any, 0, 8)
	if m, ok := MatchFromContext(ctx); ok {
		attrs = append(attrs, "action", m.Action, "combination", m.Combination.String())
	}
	if vm != nil {
		attrs = append(attrs, "vm", vm.Name())
	}
	return attrs
}
