package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spiceqa/rvdispatch/capability"
)

// Key identifies one registration: the markers an implementation requires
// and the action it implements. Markers are sorted by category.
type Key struct {
	Markers []capability.Marker
	Action  string
}

// NewKey normalises markers into a Key.
func NewKey(required []capability.Marker, name string) (Key, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Key{}, fmt.Errorf("%w: empty action name", ErrInvalidKey)
	}

	markers := make([]capability.Marker, len(required))
	copy(markers, required)
	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Category < markers[j].Category
	})

	for i, m := range markers {
		if m.IsZero() || !m.Category.Valid() {
			return Key{}, fmt.Errorf("%w: action %q has invalid marker %s", ErrInvalidKey, name, m)
		}
		if i > 0 && markers[i-1].Category == m.Category {
			return Key{}, fmt.Errorf("%w: action %q names %s twice", ErrDuplicateCategory, name, m.Category)
		}
	}

	return Key{Markers: markers, Action: name}, nil
}

// String renders the key as action[os:linux ver:7].
func (k Key) String() string {
	parts := make([]string, len(k.Markers))
	for i, m := range k.Markers {
		parts[i] = m.String()
	}
	return k.Action + "[" + strings.Join(parts, " ") + "]"
}

// mapKey is the comparable form used for storage. NUL cannot appear in a
// meaningful tag, so distinct keys never collide.
func (k Key) mapKey() string {
	var b strings.Builder
	b.WriteString(k.Action)
	for _, m := range k.Markers {
		b.WriteByte(0)
		b.WriteString(m.String())
	}
	return b.String()
}
