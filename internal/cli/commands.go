package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/spiceqa/rvdispatch/capability"
	"github.com/spiceqa/rvdispatch/registry"
	"github.com/spiceqa/rvdispatch/resolver"
)

func (a *app) actionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "actions [pattern]",
		Short: "List registered actions, optionally filtered by a glob",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			names, err := a.host.Actions(pattern)
			if err != nil {
				return usagef("%v", err)
			}
			for _, name := range names {
				fmt.Fprintln(a.out, name)
			}
			return nil
		},
	}
}

func (a *app) taxonomyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy [category]",
		Short: "Show the declared capability markers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories := capability.Categories()
			if len(args) == 1 {
				c, err := capability.ParseCategory(args[0])
				if err != nil {
					return usagef("%v", err)
				}
				categories = []capability.Category{c}
			}

			tax := a.host.Taxonomy()
			t := table.New().Headers("CATEGORY", "MARKER", "PARENTS")
			for _, c := range categories {
				for _, m := range tax.AllMarkersOf(c) {
					parents := make([]string, 0, 1)
					for _, p := range tax.Parents(m) {
						parents = append(parents, p.String())
					}
					t.Row(c.String(), m.Tag, strings.Join(parents, " "))
				}
			}
			fmt.Fprintln(a.out, t.Render())
			return nil
		},
	}
}

func (a *app) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <action>",
		Short: "Show which implementation of an action runs for the selected profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.selectProfile()
			if err != nil {
				return err
			}
			m, err := a.host.Resolver().Resolve(p, args[0])
			if err != nil {
				return noImplementation(err)
			}
			fmt.Fprintf(a.out, "action:      %s\n", m.Action)
			fmt.Fprintf(a.out, "profile:     %s\n", p)
			fmt.Fprintf(a.out, "combination: %s\n", m.Combination)
			fmt.Fprintf(a.out, "key:         %s\n", markerList(m.Markers))
			return nil
		},
	}
}

func (a *app) explainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <action>",
		Short: "Trace every fallback combination tried for an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.selectProfile()
			if err != nil {
				return err
			}
			tr := a.host.Explain(p, args[0])

			t := table.New().Headers("#", "COMBINATION", "OUTCOME", "DETAIL")
			for i, step := range tr.Steps {
				detail := markerList(step.Markers)
				if step.Outcome == resolver.OutcomeSkipped {
					missing := make([]string, 0, len(step.Missing))
					for _, c := range step.Missing {
						missing = append(missing, c.String())
					}
					detail = "missing " + strings.Join(missing, " ")
				}
				t.Row(fmt.Sprint(i+1), step.Combination.String(), string(step.Outcome), detail)
			}
			fmt.Fprintf(a.out, "action %s on %s\n", tr.Action, p)
			fmt.Fprintln(a.out, t.Render())
			if tr.Match == nil {
				return noImplementation(&resolver.NoImplementationError{Action: tr.Action, Profile: p})
			}
			return nil
		},
	}
}

func (a *app) reportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print every registration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return registry.WriteReport(a.out, a.host.Table())
		},
	}
}

func noImplementation(err error) error {
	if errors.Is(err, resolver.ErrNoImplementation) {
		return &ExitError{Code: ExitNoImplementation, Message: err.Error()}
	}
	return err
}

func markerList(markers []capability.Marker) string {
	parts := make([]string, len(markers))
	for i, m := range markers {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}
