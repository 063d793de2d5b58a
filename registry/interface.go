package registry

import (
	"github.com/spiceqa/rvdispatch/action"
	"github.com/spiceqa/rvdispatch/capability"
)

// ActionTable is the read/write surface of the registration table.
type ActionTable interface {
	// Register stores fn under the normalised (required, name) key.
	Register(required []capability.Marker, name string, fn action.Func) error

	// Lookup finds the implementation registered under exactly this key.
	// A miss is reported with false, not an error.
	Lookup(required []capability.Marker, name string) (action.Func, bool)

	// AllActionsRegistered returns every distinct action name, sorted.
	AllActionsRegistered() []string
}

var _ ActionTable = (*Table)(nil)
