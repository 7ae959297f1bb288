// Package globfs expands glob patterns against the real filesystem.
package globfs

import (
	"path/filepath"
	"sort"
	"strings"
)

// globMeta are the metacharacters filepath.Glob understands.
const globMeta = "*?["

// Adapter implements ports.GlobPort with path/filepath matching.
type Adapter struct{}

// New creates a filesystem glob adapter.
func New() *Adapter {
	return &Adapter{}
}

// Expand returns the sorted matches for pattern. A pattern matching nothing
// yields an empty slice, not an error.
func (a *Adapter) Expand(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = filepath.ToSlash(m)
	}
	sort.Strings(matches)
	return matches, nil
}

// HasMeta reports whether pattern contains glob metacharacters.
func (a *Adapter) HasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, globMeta)
}
