package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors for registration problems. They are startup configuration
// errors; callers should abort rather than retry.
var (
	// ErrConflict is returned when the normalised key is already registered.
	ErrConflict = errors.New("conflicting action registration")

	// ErrSealed is returned by Register after the table has been sealed.
	ErrSealed = errors.New("registration table is sealed")

	// ErrDuplicateCategory is returned when a key names the same category twice.
	ErrDuplicateCategory = errors.New("category repeated in registration key")

	// ErrInvalidKey is returned for empty action names, zero markers or nil implementations.
	ErrInvalidKey = errors.New("invalid registration key")

	// ErrUnreachableKey is returned when a key check finds that resolution can
	// never select the key.
	ErrUnreachableKey = errors.New("registration key is unreachable")
)

// ConflictError identifies the key that was registered twice.
type ConflictError struct {
	Key Key
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting action registration: %s is already registered", e.Key)
}

// Is allows errors.Is(err, registry.ErrConflict).
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
