// Package gitcli shells out to the git binary for fetch, diff, and show.
package gitcli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Adapter implements ports.GitPort with git subprocess calls rooted at a
// working directory.
type Adapter struct {
	gitBin  string
	workDir string
	logger  *slog.Logger
}

// New creates a git adapter. It verifies that the git binary is available
// on PATH at construction time.
func New(workDir string, logger *slog.Logger) (*Adapter, error) {
	gitBin, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git binary not found: %w", err)
	}
	return &Adapter{gitBin: gitBin, workDir: workDir, logger: logger}, nil
}

// Fetch fetches remote/ref into the given local marker ref.
func (a *Adapter) Fetch(ctx context.Context, remote, ref, marker string) error {
	if err := rejectOptionLike(remote, ref, marker); err != nil {
		return err
	}
	_, err := a.run(ctx, "fetch", "--no-tags", "--depth=1", remote, ref+":"+marker)
	return err
}

// DiffNames returns the name-only diff between two refs.
func (a *Adapter) DiffNames(ctx context.Context, refA, refB string) ([]string, error) {
	if err := rejectOptionLike(refA, refB); err != nil {
		return nil, err
	}
	out, err := a.run(ctx, "diff", "--name-only", refA, refB)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// RevParse resolves a ref to a commit SHA.
func (a *Adapter) RevParse(ctx context.Context, ref string) (string, error) {
	if err := rejectOptionLike(ref); err != nil {
		return "", err
	}
	out, err := a.run(ctx, "rev-parse", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Show returns the content of path at the given ref.
func (a *Adapter) Show(ctx context.Context, ref, path string) ([]byte, error) {
	if err := rejectOptionLike(ref, path); err != nil {
		return nil, err
	}
	out, err := a.run(ctx, "show", ref+":"+path)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func (a *Adapter) run(ctx context.Context, args ...string) (string, error) {
	a.logger.Debug("running git", "args", args)

	//nolint:gosec // G204: every argument has been checked by rejectOptionLike
	cmd := exec.CommandContext(ctx, a.gitBin, args...)
	cmd.Dir = a.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s failed: %w\nstderr: %s", args[0], err, stderr.String())
	}
	return stdout.String(), nil
}

// rejectOptionLike refuses arguments that could be parsed as git options.
// Validation happens in the resolver too; this keeps the invariant local to
// the process boundary where it matters.
func rejectOptionLike(args ...string) error {
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return fmt.Errorf("refusing option-like git argument %q", arg)
		}
	}
	return nil
}
