package domain

import "strings"

// DependencyKind distinguishes concrete file dependencies from directories
// watched as a whole.
type DependencyKind int

const (
	// DependencyFile is a single file the evaluation content depends on.
	DependencyFile DependencyKind = iota
	// DependencyWatchRoot is a directory monitored in its entirety, used
	// when a glob's base directory cannot be fully enumerated up front or a
	// bare directory reference was given.
	DependencyWatchRoot
)

// String returns the string representation of the DependencyKind.
// Implements the Stringer interface.
func (k DependencyKind) String() string {
	if k < 0 || int(k) >= len(dependencyKindNames) {
		return "Unknown"
	}
	return dependencyKindNames[k]
}

var dependencyKindNames = [...]string{
	DependencyFile:      "File",
	DependencyWatchRoot: "WatchRoot",
}

// Dependency is a file or directory an evaluation config references.
// Paths are always relative to the process working directory, regardless of
// where the config or the referenced files physically live, so membership
// checks against ChangeSet paths compare like with like.
type Dependency struct {
	Path string
	Kind DependencyKind
}

// Covers reports whether the dependency covers the given changed file:
// a File dependency matches verbatim, a WatchRoot matches any path beneath
// it. Prefixing is segment-wise, so "prompts" does not cover
// "prompts-archive/a.txt".
func (d Dependency) Covers(changed string) bool {
	if d.Kind == DependencyFile {
		return d.Path == changed
	}
	root := strings.TrimSuffix(d.Path, "/")
	if root == "" || root == "." {
		return true
	}
	return changed == root || strings.HasPrefix(changed, root+"/")
}

// DedupeDependencies removes duplicate paths, keeping first occurrence.
// The same path collected from two reference sites collapses to one entry.
func DedupeDependencies(deps []Dependency) []Dependency {
	seen := make(map[string]struct{}, len(deps))
	out := deps[:0]
	for _, d := range deps {
		key := d.Kind.String() + ":" + d.Path
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}
