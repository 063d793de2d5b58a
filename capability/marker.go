package capability

import (
	"fmt"
	"strings"
)

// Marker is a concrete value along one category, e.g. os:linux or ver:7.
type Marker struct {
	Category Category
	Tag      string
}

// NewMarker creates a Marker with a trimmed tag.
func NewMarker(category Category, tag string) Marker {
	return Marker{Category: category, Tag: strings.TrimSpace(tag)}
}

// Convenience constructors used by action modules.
func OS(tag string) Marker       { return NewMarker(OSFamily, tag) }
func Dist(tag string) Marker     { return NewMarker(Distro, tag) }
func Ver(tag string) Marker      { return NewMarker(VersionMajor, tag) }
func MinorVer(tag string) Marker { return NewMarker(VersionMinor, tag) }
func CPU(tag string) Marker      { return NewMarker(Arch, tag) }
func Platform(tag string) Marker { return NewMarker(PlatformVersion, tag) }

// ParseMarker parses the "category:tag" form produced by String.
func ParseMarker(s string) (Marker, error) {
	catName, tag, ok := strings.Cut(s, ":")
	if !ok {
		return Marker{}, fmt.Errorf("%w: %q is not in category:tag form", ErrInvalidMarker, s)
	}
	cat, err := ParseCategory(catName)
	if err != nil {
		return Marker{}, err
	}
	m := NewMarker(cat, tag)
	if m.Tag == "" {
		return Marker{}, fmt.Errorf("%w: empty tag in %q", ErrInvalidMarker, s)
	}
	return m, nil
}

// IsZero reports whether the marker carries no tag.
func (m Marker) IsZero() bool {
	return m.Tag == ""
}

// String returns the marker in "category:tag" form.
func (m Marker) String() string {
	return m.Category.String() + ":" + m.Tag
}
