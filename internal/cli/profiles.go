package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spiceqa/rvdispatch/capability"
	"github.com/spiceqa/rvdispatch/profile"
)

// selectProfile picks the VM profile from --profile, --stored, --param or,
// when interactive, an operator selection from the store.
func (a *app) selectProfile() (capability.Profile, error) {
	tax := a.host.Taxonomy()
	switch {
	case a.profileFile != "":
		p, _, err := profile.LoadFile(tax, a.profileFile)
		if err != nil {
			return capability.Profile{}, usagef("%v", err)
		}
		return p, nil
	case a.stored != "":
		return a.storedProfile(a.stored)
	case len(a.params) > 0:
		params, err := a.flagParams()
		if err != nil {
			return capability.Profile{}, err
		}
		p, err := profile.FromParams(tax, params.Map())
		if err != nil {
			return capability.Profile{}, usagef("%v", err)
		}
		return p, nil
	}

	names, err := a.store.Names()
	if err != nil {
		return capability.Profile{}, err
	}
	if !a.prompter.IsInteractive() {
		err := profile.FormatNonInteractiveError(a.store.ConfigPath(), names)
		return capability.Profile{}, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	all, err := a.store.Load()
	if err != nil {
		return capability.Profile{}, err
	}
	name, err := a.prompter.SelectProfile(all)
	if err != nil {
		return capability.Profile{}, err
	}
	return a.storedProfile(name)
}

func (a *app) storedProfile(name string) (capability.Profile, error) {
	params, err := a.store.Get(name)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return capability.Profile{}, usagef("%v", err)
		}
		return capability.Profile{}, err
	}
	p, err := profile.FromParams(a.host.Taxonomy(), params.Map())
	if err != nil {
		return capability.Profile{}, fmt.Errorf("stored profile %q: %w", name, err)
	}
	return p, nil
}

// flagParams parses --param key=value pairs and validates them.
func (a *app) flagParams() (profile.Params, error) {
	raw := make(map[string]any, len(a.params))
	for _, kv := range a.params {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return profile.Params{}, usagef("--param %q: expected key=value", kv)
		}
		raw[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := profile.Validate(raw); err != nil {
		return profile.Params{}, usagef("%v", err)
	}
	return profile.ParamsFromMap(raw), nil
}

func (a *app) profilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage stored VM profiles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := a.store.Load()
			if err != nil {
				return err
			}
			names, err := a.store.Names()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintf(a.out, "%s\t%s\n", name, profile.Describe(all[name]))
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show [name]",
		Short: "Show the capability profile of a stored profile or the selected one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				p   capability.Profile
				err error
			)
			if len(args) == 1 {
				p, err = a.storedProfile(args[0])
			} else {
				p, err = a.selectProfile()
			}
			if err != nil {
				return err
			}
			for _, c := range capability.Categories() {
				v, ok := p.Get(c)
				if !ok {
					v = "*"
				}
				fmt.Fprintf(a.out, "%-9s %s\n", c.String()+":", v)
			}
			return nil
		},
	}

	save := &cobra.Command{
		Use:   "save <name>",
		Short: "Store a profile from --profile, --param or an interactive form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := a.paramsToSave()
			if err != nil {
				return err
			}
			if _, err := profile.FromParams(a.host.Taxonomy(), params.Map()); err != nil {
				return usagef("%v", err)
			}
			if err := a.store.Put(args[0], params); err != nil {
				return err
			}
			a.logger.Info("profile saved", "name", args[0], "store", a.store.ConfigPath())
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Delete(args[0]); err != nil {
				if errors.Is(err, profile.ErrNotFound) {
					return usagef("%v", err)
				}
				return err
			}
			return nil
		},
	}

	discover := &cobra.Command{
		Use:   "discover [dir]",
		Short: "Find parameter files and show the profile each describes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Profiles.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			pattern := a.cfg.Profiles.Glob
			if pattern == "" {
				pattern = "**/*"
			}
			files, err := profile.Discover(dir, pattern)
			if err != nil {
				return usagef("%v", err)
			}
			for _, f := range files {
				rel, err := filepath.Rel(dir, f)
				if err != nil {
					rel = f
				}
				p, _, err := profile.LoadFile(a.host.Taxonomy(), f)
				if err != nil {
					a.logger.Warn("skipping profile file", "path", f, "error", err)
					continue
				}
				fmt.Fprintf(a.out, "%s\t%s\n", rel, p)
			}
			return nil
		},
	}

	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of profile parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := profile.SchemaJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, string(raw))
			return nil
		},
	}

	export := &cobra.Command{
		Use:   "export <name>",
		Short: "Print a stored profile as a YAML parameter file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := a.store.Get(args[0])
			if err != nil {
				return usagef("%v", err)
			}
			enc := yaml.NewEncoder(a.out)
			if err := enc.Encode(params); err != nil {
				_ = enc.Close()
				return fmt.Errorf("export %s: %w", args[0], err)
			}
			if err := enc.Close(); err != nil {
				return fmt.Errorf("export %s: %w", args[0], err)
			}
			return nil
		},
	}

	cmd.AddCommand(list, show, save, remove, discover, schema, export)
	return cmd
}

func (a *app) paramsToSave() (profile.Params, error) {
	switch {
	case a.profileFile != "":
		_, params, err := profile.LoadFile(a.host.Taxonomy(), a.profileFile)
		if err != nil {
			return profile.Params{}, usagef("%v", err)
		}
		return params, nil
	case len(a.params) > 0:
		return a.flagParams()
	case a.prompter.IsInteractive():
		return a.prompter.PromptParams()
	default:
		return profile.Params{}, &ExitError{Code: ExitUsage, Message: "profiles save needs --profile, --param or a terminal"}
	}
}
