// Package rvdispatch exposes OS-specific action implementations as ordinary
// calls. Callers name an action and describe the target VM; the Invoker
// resolves the most specific implementation on every call and runs it.
//
//	inv := rvdispatch.New(resolver.New(table))
//	out, err := inv.Invoke(ctx, vm.Profile(), "new_session", vm, uri)
//	if errors.Is(err, resolver.ErrNoImplementation) {
//	    // nothing registered for this OS; skip the test
//	}
package rvdispatch

import (
	"context"
	"log/slog"

	"github.com/spiceqa/rvdispatch/action"
	"github.com/spiceqa/rvdispatch/capability"
	"github.com/spiceqa/rvdispatch/resolver"
)

// Resolver is the lookup the Invoker delegates to.
type Resolver interface {
	Resolve(profile capability.Profile, name string) (resolver.Match, error)
}

// Invoker is the call-forwarding façade over a Resolver.
type Invoker struct {
	resolver   Resolver
	logger     *slog.Logger
	middleware []Middleware
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithLogger sets the logger used to report which combination matched.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Invoker) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithMiddleware appends middleware. The first one added is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(i *Invoker) {
		i.middleware = append(i.middleware, mw...)
	}
}

// New creates an Invoker.
func New(r Resolver, opts ...Option) *Invoker {
	i := &Invoker{
		resolver: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Resolve returns the implementation of name for profile, wrapped in the
// Invoker's middleware. Callers may keep the handle; it will not re-resolve.
// Implementations reach the Invoker's logger through LoggerFromContext unless
// the caller already embedded one.
// A failed resolution returns the resolver's error untouched.
func (i *Invoker) Resolve(profile capability.Profile, name string) (action.Func, error) {
	m, err := i.resolver.Resolve(profile, name)
	if err != nil {
		return nil, err
	}

	i.logger.Info("dispatching action",
		"action", name,
		"combination", m.Combination.String(),
		"profile", profile.String())

	fn := m.Func
	for idx := len(i.middleware) - 1; idx >= 0; idx-- {
		fn = i.middleware[idx](fn)
	}
	logger := i.logger.With("action", name)
	return func(ctx context.Context, vm action.VM, args ...any) (any, error) {
		if !hasLogger(ctx) {
			ctx = ContextWithLogger(ctx, logger)
		}
		return fn(WithMatch(ctx, m), vm, args...)
	}, nil
}

// Invoke resolves name for profile and runs it against vm.
// Errors from the implementation are returned as is.
func (i *Invoker) Invoke(ctx context.Context, profile capability.Profile, name string, vm action.VM, args ...any) (any, error) {
	fn, err := i.Resolve(profile, name)
	if err != nil {
		return nil, err
	}
	return fn(ctx, vm, args...)
}

// Func returns a callable for name bound to profile. Each call resolves again,
// so it always reflects the current table.
func (i *Invoker) Func(profile capability.Profile, name string) action.Func {
	return func(ctx context.Context, vm action.VM, args ...any) (any, error) {
		return i.Invoke(ctx, profile, name, vm, args...)
	}
}

// InvokeOn is Invoke using the VM's own profile.
func (i *Invoker) InvokeOn(ctx context.Context, vm action.VM, name string, args ...any) (any, error) {
	return i.Invoke(ctx, vm.Profile(), name, vm, args...)
}
