package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/spiceqa/rvdispatch/capability"
)

// LoadFile parses, validates and extracts the profile described by path.
func LoadFile(tax *capability.Taxonomy, path string) (capability.Profile, Params, error) {
	parser, err := ParserFor(path)
	if err != nil {
		return capability.Profile{}, Params{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return capability.Profile{}, Params{}, fmt.Errorf("read profile %q: %w", path, err)
	}
	raw, err := parser.Parse(data)
	if err != nil {
		return capability.Profile{}, Params{}, fmt.Errorf("parse profile %q: %w", path, err)
	}

	params := Normalize(raw)
	if err := Validate(params); err != nil {
		return capability.Profile{}, Params{}, fmt.Errorf("profile %q: %w", path, err)
	}
	p, err := FromParams(tax, params)
	if err != nil {
		return capability.Profile{}, Params{}, fmt.Errorf("profile %q: %w", path, err)
	}
	return p, ParamsFromMap(params), nil
}

// Discover returns the files under root matching a doublestar pattern such
// as "**/*.yaml", sorted and joined with root.
func Discover(root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid profile pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("discover profiles in %q: %w", root, err)
	}
	sort.Strings(matches)
	for i, m := range matches {
		matches[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	return matches, nil
}
