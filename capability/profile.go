package capability

import (
	"fmt"
	"maps"
	"strings"
)

// Profile is the observed marker of each category for one target VM.
// Absent categories do not apply to the target (e.g. no platform version on bare metal).
// A Profile is immutable; the zero value is an empty profile.
type Profile struct {
	values map[Category]string
}

// NewProfile builds a profile from per-category tags. Empty tags count as absent.
// With a non-nil taxonomy every tag must be declared and a distro must agree
// with the OS family it is declared under. A nil taxonomy skips validation.
func NewProfile(tax *Taxonomy, values map[Category]string) (Profile, error) {
	p := Profile{values: make(map[Category]string, len(values))}
	for c, tag := range values {
		if !c.Valid() {
			return Profile{}, fmt.Errorf("%w: %s", ErrInvalidMarker, c)
		}
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		p.values[c] = tag
	}

	if tax == nil {
		return p, nil
	}

	for _, c := range Categories() {
		m, ok := p.Marker(c)
		if !ok {
			continue
		}
		if err := tax.Validate(m); err != nil {
			return Profile{}, fmt.Errorf("profile %s: %w", p, err)
		}
	}

	if distro, ok := p.Marker(Distro); ok {
		families := tax.ancestorsIn(distro, OSFamily)
		family, hasFamily := p.Marker(OSFamily)
		if hasFamily && len(families) > 0 && !containsMarker(families, family) {
			return Profile{}, fmt.Errorf("%w: %s is not a %s", ErrInconsistentProfile, distro, family)
		}
	}

	return p, nil
}

// MustNewProfile is NewProfile that panics on error.
func MustNewProfile(tax *Taxonomy, values map[Category]string) Profile {
	p, err := NewProfile(tax, values)
	if err != nil {
		panic(err)
	}
	return p
}

// Get returns the tag observed for a category.
func (p Profile) Get(c Category) (string, bool) {
	tag, ok := p.values[c]
	return tag, ok
}

// Marker returns the observed marker for a category.
func (p Profile) Marker(c Category) (Marker, bool) {
	tag, ok := p.values[c]
	if !ok {
		return Marker{}, false
	}
	return Marker{Category: c, Tag: tag}, true
}

// Has reports whether the category applies to this target.
func (p Profile) Has(c Category) bool {
	_, ok := p.values[c]
	return ok
}

// Values returns a copy of the underlying category to tag map.
func (p Profile) Values() map[Category]string {
	return maps.Clone(p.values)
}

// Equal reports whether both profiles carry the same markers.
func (p Profile) Equal(other Profile) bool {
	return maps.Equal(p.values, other.values)
}

// String renders the profile as os/distro/ver/mver/arch/platform, "*" marking absent categories.
func (p Profile) String() string {
	parts := make([]string, 0, numCategories)
	for _, c := range Categories() {
		if tag, ok := p.values[c]; ok {
			parts = append(parts, tag)
		} else {
			parts = append(parts, "*")
		}
	}
	return strings.Join(parts, "/")
}

func containsMarker(list []Marker, m Marker) bool {
	for _, x := range list {
		if x == m {
			return true
		}
	}
	return false
}
