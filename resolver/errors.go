package resolver

import (
	"errors"
	"fmt"

	"github.com/spiceqa/rvdispatch/capability"
)

// ErrNoImplementation is returned when no combination of the fallback order
// has a registration for the action. Callers may treat it as "skip".
var ErrNoImplementation = errors.New("no implementation")

// NoImplementationError carries what was asked for, so callers can report it.
type NoImplementationError struct {
	Action  string
	Profile capability.Profile
	// Registered lists every action name known to the table, if available.
	Registered []string
}

func (e *NoImplementationError) Error() string {
	return fmt.Sprintf("no implementation of %q for %s", e.Action, e.Profile)
}

// Is allows errors.Is(err, resolver.ErrNoImplementation).
func (e *NoImplementationError) Is(target error) bool {
	return target == ErrNoImplementation
}
