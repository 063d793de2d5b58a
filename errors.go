package rvdispatch

import (
	"fmt"
	"runtime/debug"
)

// PanicError reports a panic recovered by PanicRecoveryMiddleware.
type PanicError struct {
	Action string
	Value  any
	Stack  []byte
}

// NewPanicError captures the current stack alongside the recovered value.
func NewPanicError(actionName string, value any) *PanicError {
	return &PanicError{
		Action: actionName,
		Value:  value,
		Stack:  debug.Stack(),
	}
}

func (e *PanicError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("action panicked: %v", e.Value)
	}
	return fmt.Sprintf("action %q panicked: %v", e.Action, e.Value)
}
