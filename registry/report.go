package registry

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// Report is the YAML form of a table inventory.
type Report struct {
	Sealed  bool           `yaml:"sealed"`
	Total   int            `yaml:"total"`
	Actions []ActionReport `yaml:"actions"`
}

// ActionReport lists the marker combinations registered for one action.
type ActionReport struct {
	Name          string     `yaml:"name"`
	Registrations [][]string `yaml:"registrations"`
}

// BuildReport groups the table's entries by action.
func BuildReport(t *Table) Report {
	entries := t.Entries()
	r := Report{Sealed: t.Sealed(), Total: len(entries)}

	for _, e := range entries {
		if n := len(r.Actions); n == 0 || r.Actions[n-1].Name != e.Key.Action {
			r.Actions = append(r.Actions, ActionReport{Name: e.Key.Action})
		}
		markers := make([]string, len(e.Key.Markers))
		for i, m := range e.Key.Markers {
			markers[i] = m.String()
		}
		last := &r.Actions[len(r.Actions)-1]
		last.Registrations = append(last.Registrations, markers)
	}
	return r
}

// WriteReport encodes the table inventory as YAML.
func WriteReport(w io.Writer, t *Table) error {
	encoder := yaml.NewEncoder(w)
	defer func() { _ = encoder.Close() }()

	if err := encoder.Encode(BuildReport(t)); err != nil {
		return fmt.Errorf("encoding registration report: %w", err)
	}
	return nil
}
