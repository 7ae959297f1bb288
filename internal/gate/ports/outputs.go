package ports

import (
	"context"

	"github.com/nathantilsley/eval-gate/internal/gate/domain"
)

// GitPort abstracts the git subprocess. Callers must validate refs before
// passing them in (see domain.ValidateRef); the adapter rejects
// option-looking refs as a second line of defense.
type GitPort interface {
	// Fetch fetches remote/ref into the given local marker ref.
	Fetch(ctx context.Context, remote, ref, marker string) error
	// DiffNames returns the name-only diff between two refs.
	DiffNames(ctx context.Context, refA, refB string) ([]string, error)
	// RevParse resolves a ref to a commit SHA.
	RevParse(ctx context.Context, ref string) (string, error)
	// Show returns the content of path at the given ref.
	Show(ctx context.Context, ref, path string) ([]byte, error)
}

// GlobPort abstracts filesystem glob expansion so the dependency extractor
// and the decision pipeline are testable without a real filesystem.
type GlobPort interface {
	Expand(pattern string) ([]string, error)
	HasMeta(pattern string) bool
}

// DependencyPort extracts the file and watch-root dependencies an
// evaluation config declares.
type DependencyPort interface {
	Extract(ctx context.Context, configPath string) ([]domain.Dependency, error)
}

// EvalPort runs the external evaluation CLI against the given prompt files.
// An empty prompts slice defers prompt selection to the config itself.
type EvalPort interface {
	Run(ctx context.Context, configPath string, prompts []string) (domain.EvalResult, error)
}

// DiffPort computes a unified text diff between two versions of a file.
type DiffPort interface {
	ComputeDiff(baseName, headName string, base, head []byte) string
}

// ReportingPort posts the run outcome back to the pull request.
type ReportingPort interface {
	PostComment(ctx context.Context, report domain.RunReport) error
}

// SummaryPort writes the run outcome to the workflow step summary.
type SummaryPort interface {
	WriteSummary(report domain.RunReport) error
}
