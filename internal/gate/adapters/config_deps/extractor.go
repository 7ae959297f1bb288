// Package configdeps extracts file and watch-root dependencies from an
// evaluation config document.
package configdeps

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nathantilsley/eval-gate/api"
	"github.com/nathantilsley/eval-gate/internal/gate/domain"
	"github.com/nathantilsley/eval-gate/internal/gate/ports"
)

// Extractor implements ports.DependencyPort. Glob expansion is injected so
// tests can supply a fake filesystem.
type Extractor struct {
	glob    ports.GlobPort
	workDir string
	logger  *slog.Logger
}

// New creates an extractor rooting all returned paths at workDir.
func New(glob ports.GlobPort, workDir string, logger *slog.Logger) *Extractor {
	return &Extractor{glob: glob, workDir: workDir, logger: logger}
}

// Extract parses the config and returns the deduplicated dependency set it
// references. A missing or malformed config is non-fatal: it logs a warning
// and returns an empty set, which merely disables dependency-based
// triggering for the run.
func (e *Extractor) Extract(_ context.Context, configPath string) ([]domain.Dependency, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		e.logger.Warn("cannot read evaluation config, skipping dependency checks",
			"config", configPath, "error", err)
		return nil, nil
	}

	var cfg api.EvalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		e.logger.Warn("cannot parse evaluation config, skipping dependency checks",
			"config", configPath, "error", err)
		return nil, nil
	}

	configDir := filepath.Dir(configPath)

	var deps []domain.Dependency
	for _, raw := range collectReferences(cfg) {
		deps = append(deps, e.resolve(configDir, raw)...)
	}

	deps = domain.DedupeDependencies(deps)
	e.logger.Debug("extracted dependencies", "config", configPath, "count", len(deps))
	return deps, nil
}

// collectReferences walks every reference site of the config and returns
// the raw paths that qualify as file-based: file://-prefixed strings, or
// objects with an explicit file field.
func collectReferences(cfg api.EvalConfig) []string {
	var refs []string

	add := func(raw string, ok bool) {
		if ok && raw != "" {
			refs = append(refs, raw)
		}
	}

	for _, p := range cfg.Providers {
		add(qualify(p.Value))
		add(qualify(p.ID))
	}
	for _, p := range cfg.Prompts {
		add(qualify(p.Value))
		add(p.File, p.File != "") // file field needs no scheme
	}
	for _, t := range cfg.Tests {
		refs = append(refs, testReferences(t)...)
	}
	if cfg.DefaultTest != nil {
		refs = append(refs, testReferences(*cfg.DefaultTest)...)
	}

	return refs
}

func testReferences(t api.TestCase) []string {
	var refs []string
	for _, v := range t.Vars {
		if s, ok := v.(string); ok {
			if raw, ok := qualify(s); ok {
				refs = append(refs, raw)
			}
		}
	}
	for _, a := range t.Assert {
		if s, ok := a.Value.(string); ok {
			if raw, ok := qualify(s); ok {
				refs = append(refs, raw)
			}
		}
	}
	return refs
}

// qualify strips the file scheme and reports whether the value was a
// file-based reference at all.
func qualify(value string) (string, bool) {
	if !strings.HasPrefix(value, api.FileScheme) {
		return "", false
	}
	return strings.TrimPrefix(value, api.FileScheme), true
}

// resolve turns one raw reference (relative to the config directory) into
// concrete dependencies rooted at the working directory.
func (e *Extractor) resolve(configDir, raw string) []domain.Dependency {
	trailingSep := strings.HasSuffix(raw, "/")

	path := raw
	if !filepath.IsAbs(path) {
		path = filepath.Join(configDir, path)
	}

	var deps []domain.Dependency
	switch {
	case e.glob.HasMeta(path):
		matches, err := e.glob.Expand(path)
		if err != nil {
			e.logger.Warn("glob expansion failed", "pattern", path, "error", err)
		}
		for _, m := range matches {
			deps = append(deps, domain.Dependency{Path: e.rooted(m, false), Kind: domain.DependencyFile})
		}
		// Static expansion cannot see files added later, so the glob's
		// metacharacter-free base directory is watched as a whole. A glob
		// whose first segment carries the metacharacter has no such prefix;
		// the config's own directory covers it then.
		prefix := globFreePrefix(path, e.glob.HasMeta)
		if prefix == "" {
			prefix = configDir
		}
		deps = append(deps, domain.Dependency{Path: e.rooted(prefix, false), Kind: domain.DependencyWatchRoot})
	case isDir(path):
		deps = append(deps, domain.Dependency{Path: e.rooted(path, trailingSep), Kind: domain.DependencyWatchRoot})
	default:
		deps = append(deps, domain.Dependency{Path: e.rooted(path, false), Kind: domain.DependencyFile})
	}
	return deps
}

// rooted rewrites path relative to the working directory so it compares
// cleanly against change-set entries. keepSep re-appends the trailing
// separator a directory reference carried, preserving the caller's intent
// for downstream consumers.
func (e *Extractor) rooted(path string, keepSep bool) string {
	rel, err := filepath.Rel(e.workDir, absolute(e.workDir, path))
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	if keepSep && !strings.HasSuffix(rel, "/") {
		rel += "/"
	}
	return rel
}

func absolute(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workDir, path)
}

// globFreePrefix returns the longest prefix of path, split on separators,
// whose segments contain no glob metacharacters.
func globFreePrefix(path string, hasMeta func(string) bool) string {
	segments := strings.Split(filepath.ToSlash(path), "/")
	var kept []string
	for _, seg := range segments {
		if hasMeta(seg) {
			break
		}
		kept = append(kept, seg)
	}
	return strings.Join(kept, "/")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
