package configdeps

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	globfs "github.com/nathantilsley/eval-gate/internal/gate/adapters/glob_fs"
	"github.com/nathantilsley/eval-gate/internal/gate/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeFile creates a file (and parents) under root.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sortDeps(deps []domain.Dependency) {
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Path != deps[j].Path {
			return deps[i].Path < deps[j].Path
		}
		return deps[i].Kind < deps[j].Kind
	})
}

func TestExtractGlobReferences(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "providers/a.py", "# a")
	writeFile(t, root, "providers/b.py", "# b")
	configPath := writeFile(t, root, "promptfooconfig.yaml", `
providers:
  - file://providers/*.py
prompts:
  - "plain inline prompt"
`)

	extractor := New(globfs.New(), root, testLogger())
	deps, err := extractor.Extract(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	want := []domain.Dependency{
		{Path: "providers", Kind: domain.DependencyWatchRoot},
		{Path: "providers/a.py", Kind: domain.DependencyFile},
		{Path: "providers/b.py", Kind: domain.DependencyFile},
	}
	sortDeps(deps)
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractRootLevelGlob(t *testing.T) {
	// A glob whose first segment carries the metacharacter has no glob-free
	// prefix, so the config's own directory becomes the watch root. The
	// result must not depend on whether the config path was given relative
	// or absolute.
	root := t.TempDir()
	writeFile(t, root, "a.json", "{}")
	writeFile(t, root, "config.yaml", `
providers:
  - file://*.json
`)
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(root); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	extractor := New(globfs.New(), root, testLogger())

	want := []domain.Dependency{
		{Path: ".", Kind: domain.DependencyWatchRoot},
		{Path: "a.json", Kind: domain.DependencyFile},
	}

	for name, configPath := range map[string]string{
		"relative": "config.yaml",
		"absolute": filepath.Join(root, "config.yaml"),
	} {
		t.Run(name, func(t *testing.T) {
			deps, err := extractor.Extract(context.Background(), configPath)
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			sortDeps(deps)
			if diff := cmp.Diff(want, deps); diff != "" {
				t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractReferenceForms(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "prompts/hello.txt", "hi")
	writeFile(t, root, "vars/cities.csv", "a,b")
	writeFile(t, root, "asserts/check.py", "# check")
	if err := os.MkdirAll(filepath.Join(root, "fixtures"), 0o755); err != nil {
		t.Fatal(err)
	}
	configPath := writeFile(t, root, "promptfooconfig.yaml", `
providers:
  - openai:gpt-4
  - id: file://providers/custom.py
prompts:
  - file: prompts/hello.txt
tests:
  - vars:
      cities: file://vars/cities.csv
      inline: just a string
    assert:
      - type: python
        value: file://asserts/check.py
      - type: contains
        value: hello
defaultTest:
  vars:
    fixtures: file://fixtures/
`)

	extractor := New(globfs.New(), root, testLogger())
	deps, err := extractor.Extract(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	want := []domain.Dependency{
		{Path: "asserts/check.py", Kind: domain.DependencyFile},
		{Path: "fixtures/", Kind: domain.DependencyWatchRoot},
		{Path: "prompts/hello.txt", Kind: domain.DependencyFile},
		// Referenced but absent on disk: still a file dependency.
		{Path: "providers/custom.py", Kind: domain.DependencyFile},
		{Path: "vars/cities.csv", Kind: domain.DependencyFile},
	}
	sortDeps(deps)
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractConfigInSubdirectory(t *testing.T) {
	// References resolve relative to the config's directory, but results
	// are rooted at the working directory.
	root := t.TempDir()
	writeFile(t, root, "evals/prompts/p.txt", "p")
	configPath := writeFile(t, root, "evals/config.yaml", `
prompts:
  - file://prompts/p.txt
`)

	extractor := New(globfs.New(), root, testLogger())
	deps, err := extractor.Extract(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	want := []domain.Dependency{
		{Path: "evals/prompts/p.txt", Kind: domain.DependencyFile},
	}
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "providers/a.py", "# a")
	configPath := writeFile(t, root, "config.yaml", `
providers:
  - file://providers/*.py
prompts:
  - file://providers/a.py
`)

	extractor := New(globfs.New(), root, testLogger())

	first, err := extractor.Extract(context.Background(), configPath)
	if err != nil {
		t.Fatal(err)
	}
	second, err := extractor.Extract(context.Background(), configPath)
	if err != nil {
		t.Fatal(err)
	}

	sortDeps(first)
	sortDeps(second)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated extraction differs (-first +second):\n%s", diff)
	}
}

func TestExtractDeduplicates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "shared.txt", "x")
	configPath := writeFile(t, root, "config.yaml", `
prompts:
  - file://shared.txt
tests:
  - vars:
      again: file://shared.txt
`)

	extractor := New(globfs.New(), root, testLogger())
	deps, err := extractor.Extract(context.Background(), configPath)
	if err != nil {
		t.Fatal(err)
	}

	want := []domain.Dependency{
		{Path: "shared.txt", Kind: domain.DependencyFile},
	}
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractMalformedYAML(t *testing.T) {
	root := t.TempDir()
	configPath := writeFile(t, root, "config.yaml", "prompts: [unclosed\n  - nope")

	extractor := New(globfs.New(), root, testLogger())
	deps, err := extractor.Extract(context.Background(), configPath)
	if err != nil {
		t.Fatalf("malformed YAML must not error, got %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("want empty set, got %v", deps)
	}
}

func TestExtractMissingConfig(t *testing.T) {
	extractor := New(globfs.New(), t.TempDir(), testLogger())
	deps, err := extractor.Extract(context.Background(), "does/not/exist.yaml")
	if err != nil {
		t.Fatalf("missing config must not error, got %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("want empty set, got %v", deps)
	}
}

// fakeGlob lets tests drive the extractor without touching the filesystem.
type fakeGlob struct {
	matches map[string][]string
}

func (g *fakeGlob) Expand(pattern string) ([]string, error) {
	return g.matches[pattern], nil
}

func (g *fakeGlob) HasMeta(pattern string) bool {
	for _, c := range pattern {
		if c == '*' || c == '?' || c == '[' {
			return true
		}
	}
	return false
}

func TestExtractWithInjectedGlob(t *testing.T) {
	root := t.TempDir()
	configPath := writeFile(t, root, "config.yaml", `
providers:
  - file://providers/*.py
`)

	glob := &fakeGlob{matches: map[string][]string{
		filepath.Join(root, "providers/*.py"): {
			filepath.Join(root, "providers/fake.py"),
		},
	}}

	extractor := New(glob, root, testLogger())
	deps, err := extractor.Extract(context.Background(), configPath)
	if err != nil {
		t.Fatal(err)
	}

	want := []domain.Dependency{
		{Path: "providers/fake.py", Kind: domain.DependencyFile},
		{Path: "providers", Kind: domain.DependencyWatchRoot},
	}
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
}
