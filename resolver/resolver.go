// Package resolver picks the most specific registered implementation of an
// action for a VM profile.
//
// Resolution walks FallbackOrder from most to least specific. A combination
// whose categories are not all present in the profile is skipped: an absent
// marker never acts as a wildcard. The first combination with a registration
// wins; later, less specific registrations are not considered.
package resolver

import (
	"log/slog"

	"github.com/spiceqa/rvdispatch/action"
	"github.com/spiceqa/rvdispatch/capability"
)

// Lookuper is the part of the registration table the resolver needs.
type Lookuper interface {
	Lookup(required []capability.Marker, name string) (action.Func, bool)
}

// lister is optionally implemented by tables to improve error messages.
type lister interface {
	AllActionsRegistered() []string
}

// Match is a successful resolution.
type Match struct {
	Action      string
	Func        action.Func
	Combination Combination
	Markers     []capability.Marker
}

// Resolver resolves action names against a table.
type Resolver struct {
	table  Lookuper
	logger *slog.Logger
	order  []Combination
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for resolution tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithOrder replaces the fallback order. Production code uses FallbackOrder.
func WithOrder(order []Combination) Option {
	return func(r *Resolver) {
		r.order = order
	}
}

// New creates a resolver over table.
func New(table Lookuper, opts ...Option) *Resolver {
	r := &Resolver{
		table:  table,
		logger: slog.Default(),
		order:  FallbackOrder,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the most specific implementation of name for profile.
// It fails with *NoImplementationError when the fallback order is exhausted.
func (r *Resolver) Resolve(profile capability.Profile, name string) (Match, error) {
	for _, combo := range r.order {
		markers, missing := combo.Markers(profile)
		if len(missing) > 0 {
			continue
		}
		if fn, ok := r.table.Lookup(markers, name); ok {
			r.logger.Debug("resolved action",
				"action", name,
				"combination", combo.String(),
				"profile", profile.String())
			return Match{Action: name, Func: fn, Combination: combo, Markers: markers}, nil
		}
	}

	err := &NoImplementationError{Action: name, Profile: profile}
	if l, ok := r.table.(lister); ok {
		err.Registered = l.AllActionsRegistered()
	}
	r.logger.Debug("no implementation", "action", name, "profile", profile.String())
	return Match{}, err
}

// Outcome is what happened to one combination during Explain.
type Outcome string

const (
	OutcomeSkipped    Outcome = "skipped"
	OutcomeMiss       Outcome = "miss"
	OutcomeMatch      Outcome = "match"
	OutcomeNotReached Outcome = "not-reached"
)

// Step records one combination of a trace.
type Step struct {
	Combination Combination
	Outcome     Outcome
	Markers     []capability.Marker
	Missing     []capability.Category
}

// Trace explains a resolution combination by combination.
type Trace struct {
	Action  string
	Profile capability.Profile
	Steps   []Step
	Match   *Match
}

// Explain performs the same walk as Resolve but records every step,
// including the combinations after the winning one.
func (r *Resolver) Explain(profile capability.Profile, name string) Trace {
	tr := Trace{Action: name, Profile: profile}
	for _, combo := range r.order {
		step := Step{Combination: combo}
		markers, missing := combo.Markers(profile)
		switch {
		case tr.Match != nil:
			step.Outcome = OutcomeNotReached
			step.Markers = markers
			step.Missing = missing
		case len(missing) > 0:
			step.Outcome = OutcomeSkipped
			step.Missing = missing
		default:
			step.Markers = markers
			if fn, ok := r.table.Lookup(markers, name); ok {
				step.Outcome = OutcomeMatch
				tr.Match = &Match{Action: name, Func: fn, Combination: combo, Markers: markers}
			} else {
				step.Outcome = OutcomeMiss
			}
		}
		tr.Steps = append(tr.Steps, step)
	}
	return tr
}
