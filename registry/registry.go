// Package registry implements the table of OS-specific action implementations.
//
// Action modules populate the table once at startup. The harness then seals it,
// after which it is only read, concurrently, by resolvers.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/spiceqa/rvdispatch/action"
	"github.com/spiceqa/rvdispatch/capability"
)

// Entry is one stored registration.
type Entry struct {
	Key  Key
	Func action.Func
}

// Table implements ActionTable using in-memory storage.
type Table struct {
	entries    map[string]Entry
	taxonomy   *capability.Taxonomy
	logger     *slog.Logger
	keyCheck   func(Key) error
	mu         sync.RWMutex
	strictMode bool
	sealed     bool
}

// Option configures the Table.
type Option func(*Table)

// WithStrictMode selects conflict handling. Strict tables (the default) reject a
// second registration of the same key; non-strict tables let the last one win.
func WithStrictMode(strict bool) Option {
	return func(t *Table) {
		t.strictMode = strict
	}
}

// WithTaxonomy validates every registered marker against tax.
func WithTaxonomy(tax *capability.Taxonomy) Option {
	return func(t *Table) {
		t.taxonomy = tax
	}
}

// WithKeyCheck runs check on every normalised key before it is stored.
// A non-nil error rejects the registration.
func WithKeyCheck(check func(Key) error) Option {
	return func(t *Table) {
		t.keyCheck = check
	}
}

// WithLogger sets the logger used for registration tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates an empty registration table.
func New(opts ...Option) *Table {
	t := &Table{
		entries:    make(map[string]Entry),
		logger:     slog.Default(),
		strictMode: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Register adds fn under the normalised key built from required and name.
func (t *Table) Register(required []capability.Marker, name string, fn action.Func) error {
	key, err := NewKey(required, name)
	if err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("%w: %s has a nil implementation", ErrInvalidKey, key)
	}
	if t.taxonomy != nil {
		for _, m := range key.Markers {
			if err := t.taxonomy.Validate(m); err != nil {
				return fmt.Errorf("registering %s: %w", key, err)
			}
		}
	}
	if t.keyCheck != nil {
		if err := t.keyCheck(key); err != nil {
			return fmt.Errorf("registering %s: %w", key, err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sealed {
		return fmt.Errorf("registering %s: %w", key, ErrSealed)
	}

	mk := key.mapKey()
	if _, exists := t.entries[mk]; exists {
		if t.strictMode {
			return &ConflictError{Key: key}
		}
		t.logger.Warn("overriding action registration", "key", key.String())
	}

	t.entries[mk] = Entry{Key: key, Func: fn}
	t.logger.Debug("registered action", "key", key.String())
	return nil
}

// Lookup finds the implementation registered under exactly this key.
// No fallback happens here.
func (t *Table) Lookup(required []capability.Marker, name string) (action.Func, bool) {
	key, err := NewKey(required, name)
	if err != nil {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[key.mapKey()]
	if !ok {
		return nil, false
	}
	return e.Func, true
}

// Seal closes the table for registration.
func (t *Table) Seal() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sealed = true
}

// Sealed reports whether Seal has been called.
func (t *Table) Sealed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sealed
}

// Len returns the number of registrations.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// AllActionsRegistered returns every distinct action name, sorted.
func (t *Table) AllActionsRegistered() []string {
	t.mu.RLock()
	seen := make(map[string]struct{}, len(t.entries))
	for _, e := range t.entries {
		seen[e.Key.Action] = struct{}{}
	}
	t.mu.RUnlock()

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Entries returns every registration ordered by action, then by key.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Action != out[j].Key.Action {
			return out[i].Key.Action < out[j].Key.Action
		}
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}
