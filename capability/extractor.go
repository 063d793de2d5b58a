// Package capability describes the axes along which test targets differ.
// It holds the fixed category set, the marker taxonomy, immutable VM profiles,
// and the extractors that turn flat test parameters into markers.
package capability

import (
	"sort"
	"sync"
)

// Extractor derives the markers of one category from a flat test parameter set
// (os_type=linux, os_variant=rhel7, ...). An extractor returns no markers when
// its parameters are absent.
type Extractor interface {
	// Extract returns the tags found in params, keyed by category.
	Extract(params map[string]any) map[Category]string
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(params map[string]any) map[Category]string

func (f ExtractorFunc) Extract(params map[string]any) map[Category]string {
	return f(params)
}

// ExtractorRegistry holds named extractors and runs them in name order.
type ExtractorRegistry struct {
	extractors map[string]Extractor
	mu         sync.RWMutex
}

// NewExtractorRegistry creates an empty extractor registry.
func NewExtractorRegistry() *ExtractorRegistry {
	return &ExtractorRegistry{
		extractors: make(map[string]Extractor),
	}
}

// Register adds an extractor under a name, replacing any previous one.
func (r *ExtractorRegistry) Register(name string, extractor Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[name] = extractor
}

// Get retrieves the extractor registered under name.
func (r *ExtractorRegistry) Get(name string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	extractor, ok := r.extractors[name]
	return extractor, ok
}

// ExtractAll merges the output of every extractor. Later names win on overlap.
func (r *ExtractorRegistry) ExtractAll(params map[string]any) map[Category]string {
	r.mu.RLock()
	names := make([]string, 0, len(r.extractors))
	for name := range r.extractors {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)

	out := make(map[Category]string)
	for _, name := range names {
		ext, ok := r.Get(name)
		if !ok {
			continue
		}
		for c, tag := range ext.Extract(params) {
			if tag != "" {
				out[c] = tag
			}
		}
	}
	return out
}
