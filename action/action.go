// Package action defines the contract between the dispatch core and the
// modules that implement OS-specific operations.
package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/spiceqa/rvdispatch/capability"
)

// ErrBadArgument is returned by Arg when a positional argument is missing or of the wrong type.
var ErrBadArgument = errors.New("bad action argument")

// Func is one implementation of a named action. The core never looks inside it;
// errors it returns reach the caller unchanged.
type Func func(ctx context.Context, vm VM, args ...any) (any, error)

// VM is the target an action runs against. Sessions, consoles and shells live
// behind it and are provided by the test harness.
type VM interface {
	// Name identifies the VM in logs.
	Name() string

	// Profile describes the VM's operating system and platform.
	Profile() capability.Profile

	// Exec runs a shell command on the VM and returns its combined output.
	Exec(ctx context.Context, command string) (string, error)
}

// Registrar accepts implementations during startup.
type Registrar interface {
	Register(required []capability.Marker, name string, fn Func) error
}

// Module is a unit of action implementations registered together.
type Module interface {
	// Name identifies the module in startup errors.
	Name() string

	// Register adds every implementation the module provides.
	Register(r Registrar) error
}

// Arg returns the i-th argument as T.
func Arg[T any](args []any, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, fmt.Errorf("%w: want at least %d arguments, got %d", ErrBadArgument, i+1, len(args))
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: argument %d is %T, want %T", ErrBadArgument, i, args[i], zero)
	}
	return v, nil
}

// ArgOr returns the i-th argument as T, or def when it is absent.
// A present argument of the wrong type is still an error.
func ArgOr[T any](args []any, i int, def T) (T, error) {
	if i >= len(args) {
		return def, nil
	}
	return Arg[T](args, i)
}
