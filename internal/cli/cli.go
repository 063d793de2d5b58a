// Package cli implements the rvdispatch command line: introspection of the
// action table, resolution traces for a VM profile, and profile management.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/spiceqa/rvdispatch/config"
	"github.com/spiceqa/rvdispatch/host"
	"github.com/spiceqa/rvdispatch/logging"
	"github.com/spiceqa/rvdispatch/profile"
)

// Exit codes besides 0 and 1.
const (
	ExitUsage            = 2
	ExitNoImplementation = 3
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// app holds state shared by every subcommand.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string
	logFormat  string
	legacy     bool

	profileFile string
	stored      string
	params      []string

	cfg      config.Config
	logger   *slog.Logger
	host     *host.Host
	store    *profile.FileStore
	prompter profile.Prompter
	hostOpts []host.Option
}

// Option customises the CLI, mostly for tests.
type Option func(*app)

// WithPrompter replaces the terminal prompter.
func WithPrompter(p profile.Prompter) Option {
	return func(a *app) {
		a.prompter = p
	}
}

// WithHostOptions passes extra options to host.New.
func WithHostOptions(opts ...host.Option) Option {
	return func(a *app) {
		a.hostOpts = append(a.hostOpts, opts...)
	}
}

// NewRootCommand builds the command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer, opts ...Option) *cobra.Command {
	a := &app{
		out:      out,
		errOut:   errOut,
		prompter: profile.NewTerminalPrompter(),
	}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "rvdispatch",
		Short: "Inspect OS-specific action dispatch for remote-viewer tests",
		Long: `rvdispatch shows which implementation of an action runs on a VM.

Actions are registered per capability (OS family, version, architecture,
platform) and resolved from most to least specific.

Examples:
  rvdispatch actions '*_session'
  rvdispatch resolve new_session --param os_type=linux --param os_variant=rhel7.4
  rvdispatch explain start_service --profile vms/win10.yaml
  rvdispatch profiles save rhel74 --param os_type=linux --param os_variant=rhel7.4`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file (default: ./"+config.DefaultFileName+" if present)")
	flags.StringVar(&a.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "Override log format (text, json)")
	flags.BoolVar(&a.legacy, "legacy", false, "Let duplicate registrations overwrite instead of failing")
	flags.StringVarP(&a.profileFile, "profile", "p", "", "Load the VM profile from a parameter file")
	flags.StringVarP(&a.stored, "stored", "s", "", "Use a stored VM profile by name")
	flags.StringArrayVar(&a.params, "param", nil, "VM parameter as key=value (repeatable)")

	root.AddCommand(
		a.actionsCommand(),
		a.taxonomyCommand(),
		a.resolveCommand(),
		a.explainCommand(),
		a.reportCommand(),
		a.profilesCommand(),
	)
	return root
}

// Execute runs the CLI with args.
func Execute(ctx context.Context, out, errOut io.Writer, args []string, opts ...Option) error {
	root := NewRootCommand(out, errOut, opts...)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if isUsageError(err) {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return err
}

// usageError marks errors caused by bad arguments.
type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

func isUsageError(err error) bool {
	var u usageError
	return errors.As(err, &u)
}

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// setup loads configuration, builds the logger and the host.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if a.legacy {
		cfg.Registry.Strict = false
	}
	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	a.cfg = cfg

	logOpts := cfg.LoggingOptions()
	logOpts.Output = a.errOut
	logger, err := logging.New(logOpts)
	if err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	a.logger = logger
	logger.Debug("configuration loaded", "source", cfg.Source)

	opts := append([]host.Option{
		host.WithLogger(logger),
		host.WithStrictMode(cfg.Registry.Strict),
	}, a.hostOpts...)
	h, err := host.New(opts...)
	if err != nil {
		return fmt.Errorf("starting dispatch host: %w", err)
	}
	a.host = h
	a.store = profile.NewFileStore(profile.WithPath(cfg.Profiles.Store))
	return nil
}
