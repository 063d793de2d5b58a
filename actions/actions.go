// Package actions lists the action modules compiled into the harness.
package actions

import (
	"github.com/spiceqa/rvdispatch/action"
	"github.com/spiceqa/rvdispatch/actions/service"
	"github.com/spiceqa/rvdispatch/actions/session"
)

// Builtin returns the modules registered by default, in registration order.
func Builtin() []action.Module {
	return []action.Module{
		service.Module{},
		session.Module{},
	}
}
