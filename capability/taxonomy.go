package capability

import (
	"fmt"
	"sync"
)

// Taxonomy holds the declared markers of every category and the subtype
// relation between them (rhel is a linux, linux is an os).
// It is descriptive only; dispatch never walks it.
type Taxonomy struct {
	parents map[Marker][]Marker
	order   map[Category][]Marker
	mu      sync.RWMutex
}

// NewTaxonomy creates an empty taxonomy.
func NewTaxonomy() *Taxonomy {
	return &Taxonomy{
		parents: make(map[Marker][]Marker),
		order:   make(map[Category][]Marker),
	}
}

// DeclareMarker registers a marker and its immediate parents.
// Parents must already be declared.
func (t *Taxonomy) DeclareMarker(category Category, tag string, parents ...Marker) error {
	m := NewMarker(category, tag)
	if !category.Valid() || m.Tag == "" {
		return fmt.Errorf("%w: %s", ErrInvalidMarker, m)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.parents[m]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMarker, m)
	}
	for _, p := range parents {
		if _, ok := t.parents[p]; !ok {
			return fmt.Errorf("declaring %s: parent %w", m, &UnknownMarkerError{Marker: p})
		}
	}

	t.parents[m] = append([]Marker(nil), parents...)
	t.order[category] = append(t.order[category], m)
	return nil
}

// MustDeclare is DeclareMarker that panics on error. Meant for static tables.
func (t *Taxonomy) MustDeclare(category Category, tag string, parents ...Marker) Marker {
	if err := t.DeclareMarker(category, tag, parents...); err != nil {
		panic(err)
	}
	return NewMarker(category, tag)
}

// AllMarkersOf returns the markers of a category in declaration order.
func (t *Taxonomy) AllMarkersOf(category Category) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Marker(nil), t.order[category]...)
}

// LookupMarker reports whether (category, tag) is declared.
func (t *Taxonomy) LookupMarker(category Category, tag string) (Marker, bool) {
	m := NewMarker(category, tag)
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.parents[m]; !ok {
		return Marker{}, false
	}
	return m, true
}

// Validate returns an *UnknownMarkerError if m is not declared.
func (t *Taxonomy) Validate(m Marker) error {
	if _, ok := t.LookupMarker(m.Category, m.Tag); !ok {
		return &UnknownMarkerError{Marker: m}
	}
	return nil
}

// Parents returns the immediate parents of m.
func (t *Taxonomy) Parents(m Marker) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Marker(nil), t.parents[m]...)
}

// Implies reports whether m is ancestor or a (transitive) subtype of it.
func (t *Taxonomy) Implies(m, ancestor Marker) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[Marker]bool)
	stack := []Marker{m}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == ancestor {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, t.parents[cur]...)
	}
	return false
}

// ancestorsIn returns the ancestors of m that belong to category.
func (t *Taxonomy) ancestorsIn(m Marker, category Category) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Marker
	seen := make(map[Marker]bool)
	stack := append([]Marker(nil), t.parents[m]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if cur.Category == category {
			out = append(out, cur)
		}
		stack = append(stack, t.parents[cur]...)
	}
	return out
}
