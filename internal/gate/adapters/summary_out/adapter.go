// Package summaryout writes run reports to the workflow step summary.
package summaryout

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nathantilsley/eval-gate/internal/gate/domain"
)

// Adapter implements ports.SummaryPort by appending markdown to the step
// summary file the CI runner provides.
type Adapter struct {
	path   string // e.g. the GITHUB_STEP_SUMMARY file
	logger *slog.Logger
}

// New creates a summary adapter writing to path. An empty path disables
// writing (local runs outside CI).
func New(path string, logger *slog.Logger) *Adapter {
	return &Adapter{path: path, logger: logger}
}

// WriteSummary appends the rendered report to the summary file.
func (a *Adapter) WriteSummary(report domain.RunReport) error {
	if a.path == "" {
		a.logger.Debug("no step summary file configured, skipping")
		return nil
	}

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening step summary: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatSummary(report)); err != nil {
		return fmt.Errorf("writing step summary: %w", err)
	}
	return nil
}

// FormatSummary renders the step summary markdown: outcome table, share
// link, prompt diffs, and cache usage.
func FormatSummary(report domain.RunReport) string {
	var b strings.Builder
	b.WriteString("## LLM Evaluation\n\n")
	fmt.Fprintf(&b, "- Trigger: `%s`\n", report.Trigger.Kind)
	fmt.Fprintf(&b, "- Decision: `%s`\n", report.Decision.Reason)
	fmt.Fprintf(&b, "- Config: `%s`\n", report.ConfigPath)
	if report.Decision.Degraded {
		b.WriteString("- Diff unavailable: every matched prompt file was evaluated\n")
	}

	if report.Eval == nil {
		b.WriteString("\nEvaluation skipped.\n")
		return b.String()
	}

	stats := report.Eval.Stats
	b.WriteString("\n| Passed | Failed | Errors |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d |\n", stats.Successes, stats.Failures, stats.Errors)

	if report.Eval.ShareURL != "" {
		fmt.Fprintf(&b, "\n[View full results](%s)\n", report.Eval.ShareURL)
	}
	if report.CacheBytes > 0 {
		fmt.Fprintf(&b, "\nEvaluation cache: %s\n", humanBytes(report.CacheBytes))
	}

	if len(report.PromptDiffs) > 0 {
		b.WriteString("\n### Prompt changes\n")
		for _, d := range report.PromptDiffs {
			fmt.Fprintf(&b, "\n<details><summary><code>%s</code></summary>\n\n```diff\n%s\n```\n\n</details>\n", d.Path, d.Diff)
		}
	}
	return b.String()
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
