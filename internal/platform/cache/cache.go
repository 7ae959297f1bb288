// Package cache manages the evaluation CLI's disk cache directory.
package cache

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir is a cache directory the eval subprocess reads and writes. Eviction
// is left to the CLI; this only creates the directory and measures it.
type Dir struct {
	path string
}

// New ensures the cache directory exists and returns a handle to it.
// An empty path returns a nil Dir, meaning caching is unconfigured.
func New(path string) (*Dir, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the cache directory path.
func (d *Dir) Path() string {
	return d.path
}

// Size walks the directory and returns the total size of its files in
// bytes. Unreadable entries are skipped rather than failing the walk.
func (d *Dir) Size() (int64, error) {
	var total int64
	err := filepath.WalkDir(d.path, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.Type().IsRegular() {
			if info, err := entry.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walking cache directory: %w", err)
	}
	return total, nil
}
