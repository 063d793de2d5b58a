// Package actiontest provides a scripted VM for testing action modules.
package actiontest

import (
	"context"
	"strings"
	"sync"

	"github.com/spiceqa/rvdispatch/capability"
)

// Reply is the scripted answer to a command.
type Reply struct {
	Output string
	Err    error
}

// FakeVM implements action.VM and records every command it is asked to run.
type FakeVM struct {
	VMName    string
	VMProfile capability.Profile
	Replies   map[string]Reply // keyed by command prefix
	Default   Reply
	mu        sync.Mutex
	commands  []string
}

// NewFakeVM creates a FakeVM with the given name and profile.
func NewFakeVM(name string, profile capability.Profile) *FakeVM {
	return &FakeVM{
		VMName:    name,
		VMProfile: profile,
		Replies:   make(map[string]Reply),
	}
}

// On scripts the reply for commands starting with prefix.
func (v *FakeVM) On(prefix string, reply Reply) *FakeVM {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Replies[prefix] = reply
	return v
}

func (v *FakeVM) Name() string { return v.VMName }

func (v *FakeVM) Profile() capability.Profile { return v.VMProfile }

// Exec records command and returns the reply of the longest matching prefix.
func (v *FakeVM) Exec(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.commands = append(v.commands, command)

	best, found := "", false
	for prefix := range v.Replies {
		if strings.HasPrefix(command, prefix) && (!found || len(prefix) > len(best)) {
			best, found = prefix, true
		}
	}
	if found {
		r := v.Replies[best]
		return r.Output, r.Err
	}
	return v.Default.Output, v.Default.Err
}

// Commands returns the commands run so far.
func (v *FakeVM) Commands() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.commands...)
}

// LastCommand returns the most recent command, or "".
func (v *FakeVM) LastCommand() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.commands) == 0 {
		return ""
	}
	return v.commands[len(v.commands)-1]
}
