package capability

import (
	"fmt"
	"strings"
)

// Category is one axis along which target systems differ.
// The numeric order of the constants is the order markers are normalised to.
type Category int

const (
	OSFamily Category = iota
	Distro
	VersionMajor
	VersionMinor
	Arch
	PlatformVersion

	numCategories
)

var categoryNames = [numCategories]string{
	OSFamily:        "os",
	Distro:          "distro",
	VersionMajor:    "ver",
	VersionMinor:    "mver",
	Arch:            "arch",
	PlatformVersion: "platform",
}

// Long names accepted by ParseCategory in addition to the short ones.
var categoryAliases = map[string]Category{
	"os_family":        OSFamily,
	"version_major":    VersionMajor,
	"version_minor":    VersionMinor,
	"platform_version": PlatformVersion,
}

// Categories returns every category in normalisation order.
func Categories() []Category {
	out := make([]Category, 0, numCategories)
	for c := OSFamily; c < numCategories; c++ {
		out = append(out, c)
	}
	return out
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= OSFamily && c < numCategories
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory maps a category name back to its constant.
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range categoryNames {
		if n == name {
			return Category(c), nil
		}
	}
	if c, ok := categoryAliases[name]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}
