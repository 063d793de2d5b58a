package resolver

import (
	"fmt"
	"strings"

	"github.com/spiceqa/rvdispatch/capability"
	"github.com/spiceqa/rvdispatch/registry"
)

// Combination is a set of categories tried together against the table.
type Combination []capability.Category

// Short aliases keep FallbackOrder readable.
const (
	os          = capability.OSFamily
	ver         = capability.VersionMajor
	mver        = capability.VersionMinor
	arch        = capability.Arch
	platformVer = capability.PlatformVersion
)

// FallbackOrder lists the combinations tried for every resolution, most
// specific first. Platform version outranks architecture, which outranks the
// minor version. Changing this order changes which implementation runs.
var FallbackOrder = []Combination{
	{os, ver, mver, arch, platformVer},
	{os, ver, mver, platformVer},
	{os, ver, arch, platformVer},
	{os, ver, platformVer},
	{os, platformVer},
	{os, ver, mver, arch},
	{os, ver, mver},
	{os, ver, arch},
	{os, ver},
	{os},
}

// Markers returns the profile's markers for every category in c, or the
// categories the profile lacks.
func (c Combination) Markers(p capability.Profile) (markers []capability.Marker, missing []capability.Category) {
	markers = make([]capability.Marker, 0, len(c))
	for _, cat := range c {
		m, ok := p.Marker(cat)
		if !ok {
			missing = append(missing, cat)
			continue
		}
		markers = append(markers, m)
	}
	if len(missing) > 0 {
		return nil, missing
	}
	return markers, nil
}

// String renders the combination as [os ver mver].
func (c Combination) String() string {
	parts := make([]string, len(c))
	for i, cat := range c {
		parts[i] = cat.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// covers reports whether the key's markers name exactly the categories of c.
func (c Combination) covers(markers []capability.Marker) bool {
	if len(markers) != len(c) {
		return false
	}
	for _, m := range markers {
		found := false
		for _, cat := range c {
			if cat == m.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Reachable returns a registry key check rejecting keys whose category set
// equals no combination in order. Resolution could never select them.
//
//	registry.New(registry.WithKeyCheck(resolver.Reachable(resolver.FallbackOrder)))
func Reachable(order []Combination) func(registry.Key) error {
	return func(k registry.Key) error {
		for _, c := range order {
			if c.covers(k.Markers) {
				return nil
			}
		}
		return fmt.Errorf("%w: %s matches no fallback combination", registry.ErrUnreachableKey, k)
	}
}
