// Package host assembles the dispatch core for a test run: it owns the
// taxonomy and registration table, loads action modules, seals the table and
// hands out the invoker.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spiceqa/rvdispatch"
	"github.com/spiceqa/rvdispatch/action"
	"github.com/spiceqa/rvdispatch/actions"
	"github.com/spiceqa/rvdispatch/capability"
	"github.com/spiceqa/rvdispatch/registry"
	"github.com/spiceqa/rvdispatch/resolver"
)

// Host is the harness root. It is safe for concurrent use once New returns.
type Host struct {
	taxonomy *capability.Taxonomy
	table    *registry.Table
	resolver *resolver.Resolver
	invoker  *rvdispatch.Invoker
	logger   *slog.Logger
}

// New registers every module in order and seals the table. The first
// registration error aborts startup.
func New(opts ...Option) (*Host, error) {
	cfg := hostConfig{
		strict: true,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.taxonomy == nil {
		cfg.taxonomy = capability.BuiltinTaxonomy()
	}
	if !cfg.modulesSet {
		cfg.modules = actions.Builtin()
	}

	table := registry.New(
		registry.WithTaxonomy(cfg.taxonomy),
		registry.WithStrictMode(cfg.strict),
		registry.WithLogger(cfg.logger),
		registry.WithKeyCheck(resolver.Reachable(resolver.FallbackOrder)),
	)
	for _, m := range cfg.modules {
		if err := m.Register(table); err != nil {
			return nil, fmt.Errorf("loading module %q: %w", m.Name(), err)
		}
		cfg.logger.Debug("loaded action module", "module", m.Name())
	}
	table.Seal()

	res := resolver.New(table, resolver.WithLogger(cfg.logger))
	h := &Host{
		taxonomy: cfg.taxonomy,
		table:    table,
		resolver: res,
		invoker: rvdispatch.New(res,
			rvdispatch.WithLogger(cfg.logger),
			rvdispatch.WithMiddleware(cfg.middleware...)),
		logger: cfg.logger,
	}
	cfg.logger.Info("action table sealed",
		"modules", len(cfg.modules),
		"registrations", table.Len(),
		"actions", len(table.AllActionsRegistered()))
	return h, nil
}

func (h *Host) Taxonomy() *capability.Taxonomy { return h.taxonomy }

func (h *Host) Table() *registry.Table { return h.table }

func (h *Host) Resolver() *resolver.Resolver { return h.resolver }

func (h *Host) Invoker() *rvdispatch.Invoker { return h.invoker }

// NewProfile builds a profile validated against the host's taxonomy.
func (h *Host) NewProfile(values map[capability.Category]string) (capability.Profile, error) {
	return capability.NewProfile(h.taxonomy, values)
}

// Invoke runs the most specific implementation of name for vm's profile.
func (h *Host) Invoke(ctx context.Context, vm action.VM, name string, args ...any) (any, error) {
	return h.invoker.InvokeOn(ctx, vm, name, args...)
}

// Resolve returns the wrapped implementation of name for profile.
func (h *Host) Resolve(profile capability.Profile, name string) (action.Func, error) {
	return h.invoker.Resolve(profile, name)
}

// Explain traces how name resolves for profile.
func (h *Host) Explain(profile capability.Profile, name string) resolver.Trace {
	return h.resolver.Explain(profile, name)
}

// Actions returns the registered action names matching a doublestar pattern.
// An empty pattern matches every action.
func (h *Host) Actions(pattern string) ([]string, error) {
	all := h.table.AllActionsRegistered()
	if pattern == "" {
		return all, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid action pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	return slices.DeleteFunc(all, func(name string) bool {
		return !doublestar.MatchUnvalidated(pattern, name)
	}), nil
}
