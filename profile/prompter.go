package profile

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrNonInteractive is returned when a prompt is needed but stdin is not a terminal.
var ErrNonInteractive = errors.New("no profile selected and not running interactively")

// Prompter picks or describes a VM profile with the operator's help.
type Prompter interface {
	IsInteractive() bool
	SelectProfile(profiles map[string]Params) (string, error)
	PromptParams() (Params, error)
}

// TerminalPrompter provides interactive terminal prompting for profiles.
type TerminalPrompter struct{}

// NewTerminalPrompter creates a new TerminalPrompter.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// SelectProfile asks the operator to choose one of the stored profiles.
func (p *TerminalPrompter) SelectProfile(profiles map[string]Params) (string, error) {
	if len(profiles) == 0 {
		return "", fmt.Errorf("%w: the profile store is empty", ErrNotFound)
	}

	options := make([]huh.Option[string], 0, len(profiles))
	for _, name := range sortedNames(profiles) {
		options = append(options, huh.NewOption(fmt.Sprintf("%s  (%s)", name, Describe(profiles[name])), name))
	}

	var selection string
	err := huh.NewSelect[string]().
		Title("Select VM profile").
		Options(options...).
		Value(&selection).
		Run()
	if err != nil {
		return "", err
	}
	return selection, nil
}

// PromptParams asks for the parameters of a new profile.
func (p *TerminalPrompter) PromptParams() (Params, error) {
	var params Params
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("OS family").
				Options(huh.NewOptions("linux", "windows")...).
				Value(&params.OSType),
			huh.NewInput().
				Title("OS variant").
				Description("e.g. rhel7.4, win10").
				Value(&params.OSVariant),
			huh.NewSelect[string]().
				Title("Architecture").
				Options(huh.NewOptions("x86_64", "i686")...).
				Value(&params.VMArchName),
			huh.NewInput().
				Title("Platform version").
				Description("leave empty if not relevant").
				Value(&params.PlatformVersion),
		),
	)
	if err := form.Run(); err != nil {
		return Params{}, err
	}
	if err := Validate(params.Map()); err != nil {
		return Params{}, err
	}
	return params, nil
}

// Describe renders params as a one-line summary.
func Describe(p Params) string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.OSType, p.OSVariant, p.VMArchName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if p.PlatformVersion != "" {
		parts = append(parts, "platform "+p.PlatformVersion)
	}
	return strings.Join(parts, ", ")
}

// FormatNonInteractiveError explains how to pick a profile without a terminal.
func FormatNonInteractiveError(storePath string, names []string) error {
	var msg strings.Builder
	msg.WriteString("Choose a profile with one of:\n")
	msg.WriteString("  --profile FILE       load a parameter file\n")
	msg.WriteString("  --stored NAME        use a stored profile\n")
	msg.WriteString("  --param key=value    give parameters directly\n")
	if len(names) > 0 {
		fmt.Fprintf(&msg, "\nStored profiles in %s:\n", storePath)
		for _, name := range names {
			fmt.Fprintf(&msg, "  - %s\n", name)
		}
	}
	return fmt.Errorf("%w\n\n%s", ErrNonInteractive, msg.String())
}

func sortedNames(profiles map[string]Params) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
