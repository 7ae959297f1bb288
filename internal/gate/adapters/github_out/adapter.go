// Package githubout posts run results back to the pull request.
package githubout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/nathantilsley/eval-gate/internal/gate/domain"
)

const commentMarker = "<!-- eval-gate -->"

// Adapter implements ports.ReportingPort via the GitHub Issues API.
type Adapter struct {
	client *gogithub.Client
	owner  string
	repo   string
	logger *slog.Logger
}

// New creates a GitHub reporting adapter for one repository.
func New(client *gogithub.Client, owner, repo string, logger *slog.Logger) *Adapter {
	return &Adapter{client: client, owner: owner, repo: repo, logger: logger}
}

// PostComment upserts the gate's result comment on the pull request: stale
// marker comments are deleted first so the PR carries exactly one.
func (a *Adapter) PostComment(ctx context.Context, report domain.RunReport) error {
	pr := report.Trigger.PRNumber
	if pr == 0 {
		return fmt.Errorf("no pull request number in trigger")
	}

	a.deleteMatchingComments(ctx, pr)

	body := FormatComment(report)
	_, _, err := a.client.Issues.CreateComment(ctx, a.owner, a.repo, pr, &gogithub.IssueComment{
		Body: gogithub.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("creating PR comment: %w", err)
	}

	a.logger.Info("PR comment posted", "pr", pr)
	return nil
}

// deleteMatchingComments removes previous gate comments. Failures here are
// logged and tolerated; a duplicate comment beats a lost result.
func (a *Adapter) deleteMatchingComments(ctx context.Context, pr int) {
	opts := &gogithub.IssueListCommentsOptions{
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}
	var stale []int64
	for {
		comments, resp, err := a.client.Issues.ListComments(ctx, a.owner, a.repo, pr, opts)
		if err != nil {
			a.logger.Warn("failed to list comments, continuing anyway", "error", err)
			return
		}
		for _, comment := range comments {
			if strings.Contains(comment.GetBody(), commentMarker) {
				stale = append(stale, comment.GetID())
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	for _, id := range stale {
		if _, err := a.client.Issues.DeleteComment(ctx, a.owner, a.repo, id); err != nil {
			a.logger.Warn("failed to delete old comment", "commentID", id, "error", err)
		}
	}
}

// FormatComment renders the PR comment markdown for a run report.
func FormatComment(report domain.RunReport) string {
	var b strings.Builder
	b.WriteString(commentMarker)
	b.WriteString("\n## LLM Evaluation\n\n")

	if report.Eval == nil {
		fmt.Fprintf(&b, "Skipped: %s.\n", skipText(report.Decision.Reason))
		return b.String()
	}

	stats := report.Eval.Stats
	if report.Eval.Passed() {
		b.WriteString("✅ All evaluations passed.\n\n")
	} else {
		b.WriteString("❌ Some evaluations failed.\n\n")
	}

	b.WriteString("| Passed | Failed | Errors |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d |\n", stats.Successes, stats.Failures, stats.Errors)

	if report.Eval.ShareURL != "" {
		fmt.Fprintf(&b, "\n[View full results](%s)\n", report.Eval.ShareURL)
	}
	fmt.Fprintf(&b, "\n<sub>Triggered by %s (%s)</sub>\n",
		report.Trigger.Kind, report.Decision.Reason)
	return b.String()
}

func skipText(reason domain.Reason) string {
	switch reason {
	case domain.ReasonNoChangesDetected:
		return "no prompt, config, or dependency changes detected"
	default:
		return reason.String()
	}
}
