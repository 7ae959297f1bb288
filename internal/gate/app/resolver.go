package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nathantilsley/eval-gate/internal/gate/domain"
	"github.com/nathantilsley/eval-gate/internal/gate/ports"
)

// Local marker refs the resolver fetches PR branches into, so the diff
// never interpolates remote ref names into the git command line.
const (
	MarkerBase = "refs/eval-gate/base"
	MarkerHead = "refs/eval-gate/head"
)

const defaultRemote = "origin"

// ChangeSetResolver turns a TriggerContext into a ChangeSet, handling each
// trigger's comparison semantics and fallback behavior. It holds no state
// between calls.
type ChangeSetResolver struct {
	git    ports.GitPort
	logger *slog.Logger
}

// NewChangeSetResolver creates a resolver backed by the given git port.
func NewChangeSetResolver(git ports.GitPort, logger *slog.Logger) *ChangeSetResolver {
	return &ChangeSetResolver{git: git, logger: logger}
}

// Resolve computes the change set for the trigger. Pull-request failures
// are returned as errors (ref validation is a security boundary); push and
// manual-dispatch comparison failures degrade to Resolved=false instead.
func (r *ChangeSetResolver) Resolve(ctx context.Context, trigger domain.TriggerContext) (domain.ChangeSet, error) {
	switch trigger.Kind {
	case domain.TriggerPullRequest:
		return r.resolvePullRequest(ctx, trigger)
	case domain.TriggerPush:
		return r.resolvePush(ctx, trigger), nil
	case domain.TriggerManualDispatch:
		return r.resolveManualDispatch(ctx, trigger)
	default:
		r.logger.Warn("unsupported event, processing all files", "event", trigger.EventName)
		return domain.ChangeSet{Resolved: false}, nil
	}
}

func (r *ChangeSetResolver) resolvePullRequest(ctx context.Context, trigger domain.TriggerContext) (domain.ChangeSet, error) {
	// Both refs come from the event payload and are untrusted; they must
	// pass validation before any git command sees them.
	if err := domain.ValidateRef(trigger.BaseRef); err != nil {
		return domain.ChangeSet{}, fmt.Errorf("validating base ref: %w", err)
	}
	if err := domain.ValidateRef(trigger.HeadRef); err != nil {
		return domain.ChangeSet{}, fmt.Errorf("validating head ref: %w", err)
	}

	if err := r.git.Fetch(ctx, defaultRemote, trigger.BaseRef, MarkerBase); err != nil {
		return domain.ChangeSet{}, fmt.Errorf("fetching base ref %s: %w", trigger.BaseRef, err)
	}
	if err := r.git.Fetch(ctx, defaultRemote, trigger.HeadRef, MarkerHead); err != nil {
		return domain.ChangeSet{}, fmt.Errorf("fetching head ref %s: %w", trigger.HeadRef, err)
	}

	baseSHA, err := r.git.RevParse(ctx, MarkerBase)
	if err != nil {
		return domain.ChangeSet{}, fmt.Errorf("resolving base marker: %w", err)
	}
	headSHA, err := r.git.RevParse(ctx, MarkerHead)
	if err != nil {
		return domain.ChangeSet{}, fmt.Errorf("resolving head marker: %w", err)
	}

	files, err := r.git.DiffNames(ctx, MarkerBase, MarkerHead)
	if err != nil {
		return domain.ChangeSet{}, fmt.Errorf("diffing %s against %s: %w", trigger.BaseRef, trigger.HeadRef, err)
	}

	r.logger.Info("resolved pull request change set",
		"base", trigger.BaseRef, "baseSHA", baseSHA,
		"head", trigger.HeadRef, "headSHA", headSHA, "files", len(files))
	return domain.ChangeSet{Files: files, Resolved: true}, nil
}

func (r *ChangeSetResolver) resolvePush(ctx context.Context, trigger domain.TriggerContext) domain.ChangeSet {
	if trigger.BeforeSHA == "" || trigger.AfterSHA == "" || trigger.BeforeSHA == domain.ZeroSHA {
		// First push of a branch has no prior commit to diff against.
		r.logger.Warn("push has no comparable base commit, processing all files",
			"before", trigger.BeforeSHA, "after", trigger.AfterSHA)
		return domain.ChangeSet{Resolved: false}
	}

	files, err := r.git.DiffNames(ctx, trigger.BeforeSHA, trigger.AfterSHA)
	if err != nil {
		r.logger.Warn("push comparison failed, processing all files", "error", err)
		return domain.ChangeSet{Resolved: false}
	}

	r.logger.Info("resolved push change set",
		"before", trigger.BeforeSHA, "after", trigger.AfterSHA, "files", len(files))
	return domain.ChangeSet{Files: files, Resolved: true}
}

func (r *ChangeSetResolver) resolveManualDispatch(ctx context.Context, trigger domain.TriggerContext) (domain.ChangeSet, error) {
	if len(trigger.FilesOverride) > 0 {
		r.logger.Info("using explicit file list from dispatch input", "files", len(trigger.FilesOverride))
		return domain.ChangeSet{Files: trigger.FilesOverride, Resolved: true}, nil
	}

	base := trigger.BaseRefOverride
	if base == "" {
		base = "HEAD~1"
	}
	if err := domain.ValidateRef(base); err != nil {
		return domain.ChangeSet{}, fmt.Errorf("validating dispatch base ref: %w", err)
	}

	files, err := r.git.DiffNames(ctx, base, "HEAD")
	if err != nil {
		// Manual triggers are meant to be forgiving: degrade instead of aborting.
		r.logger.Warn("dispatch comparison failed, processing all files", "base", base, "error", err)
		return domain.ChangeSet{Resolved: false}, nil
	}

	r.logger.Info("resolved dispatch change set", "base", base, "files", len(files))
	return domain.ChangeSet{Files: files, Resolved: true}, nil
}
