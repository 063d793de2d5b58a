package capability

import (
	"errors"
	"fmt"
)

// Sentinel errors for taxonomy and profile problems.
// All of them are configuration errors and should stop startup.
var (
	// ErrUnknownMarker is returned when a (category, tag) pair was never declared.
	ErrUnknownMarker = errors.New("unknown capability marker")

	// ErrDuplicateMarker is returned when a marker is declared twice.
	ErrDuplicateMarker = errors.New("duplicate capability marker")

	// ErrInvalidMarker is returned for markers with an empty tag or an invalid category.
	ErrInvalidMarker = errors.New("invalid capability marker")

	// ErrUnknownCategory is returned when a category name cannot be parsed.
	ErrUnknownCategory = errors.New("unknown capability category")

	// ErrInconsistentProfile is returned when a profile's markers contradict the taxonomy,
	// e.g. distro "rhel" together with os "windows".
	ErrInconsistentProfile = errors.New("inconsistent capability profile")
)

// UnknownMarkerError names the marker that failed validation.
type UnknownMarkerError struct {
	Marker Marker
}

func (e *UnknownMarkerError) Error() string {
	return fmt.Sprintf("unknown capability marker %s", e.Marker)
}

// Is allows errors.Is(err, capability.ErrUnknownMarker).
func (e *UnknownMarkerError) Is(target error) bool {
	return target == ErrUnknownMarker
}
