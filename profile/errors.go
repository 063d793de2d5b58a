package profile

import "errors"

var (
	// ErrInvalidParams is returned when a parameter document fails schema validation.
	ErrInvalidParams = errors.New("invalid profile parameters")

	// ErrUnsupportedFormat is returned when no parser handles a file extension.
	ErrUnsupportedFormat = errors.New("unsupported profile format")

	// ErrNotFound is returned when a stored profile does not exist.
	ErrNotFound = errors.New("profile not found")
)
