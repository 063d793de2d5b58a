package host

import (
	"log/slog"

	"github.com/spiceqa/rvdispatch"
	"github.com/spiceqa/rvdispatch/action"
	"github.com/spiceqa/rvdispatch/capability"
)

type hostConfig struct {
	taxonomy   *capability.Taxonomy
	modules    []action.Module
	modulesSet bool
	strict     bool
	logger     *slog.Logger
	middleware []rvdispatch.Middleware
}

// Option defines a functional option for configuring the Host.
type Option func(*hostConfig)

// WithTaxonomy replaces the built-in taxonomy.
func WithTaxonomy(tax *capability.Taxonomy) Option {
	return func(c *hostConfig) {
		if tax != nil {
			c.taxonomy = tax
		}
	}
}

// WithModules sets the action modules to load, replacing the built-in set.
// Passing none yields a host with an empty table.
func WithModules(modules ...action.Module) Option {
	return func(c *hostConfig) {
		c.modules = modules
		c.modulesSet = true
	}
}

// WithStrictMode controls whether duplicate registrations fail startup (the
// default) or overwrite earlier ones with a warning.
func WithStrictMode(strict bool) Option {
	return func(c *hostConfig) {
		c.strict = strict
	}
}

// WithLogger sets the logger shared by the table, resolver and invoker.
func WithLogger(logger *slog.Logger) Option {
	return func(c *hostConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMiddleware appends invocation middleware.
func WithMiddleware(mw ...rvdispatch.Middleware) Option {
	return func(c *hostConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}
