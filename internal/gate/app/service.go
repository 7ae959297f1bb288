package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nathantilsley/eval-gate/internal/gate/domain"
	"github.com/nathantilsley/eval-gate/internal/gate/ports"
)

// Options carries the per-invocation gate settings, built once from the
// action inputs and passed by value. The core never reads ambient
// environment variables; only the subprocess boundary does.
type Options struct {
	ConfigPath       string
	PromptGlobs      []string
	ForceRun         bool
	UseConfigPrompts bool // pass no explicit prompt list to the eval CLI
	FailOnError      bool // fail the workflow when evaluations fail
	CacheSize        func() (int64, error)
}

// GateService implements ports.GateUseCase by orchestrating the full
// workflow: resolve the change set, extract config dependencies, decide
// run/skip, run the evaluation CLI, and report the outcome.
type GateService struct {
	resolver *ChangeSetResolver
	git      ports.GitPort
	deps     ports.DependencyPort
	glob     ports.GlobPort
	eval     ports.EvalPort
	diff     ports.DiffPort
	reporter ports.ReportingPort // nil disables PR comments
	summary  ports.SummaryPort   // nil disables the step summary
	opts     Options
	logger   *slog.Logger

	tracer   trace.Tracer
	runCount metric.Int64Counter
}

// NewGateService creates a GateService wired with all driven ports.
// reporter and summary may be nil when the corresponding surface is disabled.
func NewGateService(
	resolver *ChangeSetResolver,
	git ports.GitPort,
	deps ports.DependencyPort,
	glob ports.GlobPort,
	eval ports.EvalPort,
	diff ports.DiffPort,
	reporter ports.ReportingPort,
	summary ports.SummaryPort,
	opts Options,
	logger *slog.Logger,
	tracer trace.Tracer,
	meter metric.Meter,
) (*GateService, error) {
	runCount, err := meter.Int64Counter("evalgate.runs",
		metric.WithDescription("Gate invocations by outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating run counter: %w", err)
	}

	return &GateService{
		resolver: resolver,
		git:      git,
		deps:     deps,
		glob:     glob,
		eval:     eval,
		diff:     diff,
		reporter: reporter,
		summary:  summary,
		opts:     opts,
		logger:   logger,
		tracer:   tracer,
		runCount: runCount,
	}, nil
}

// Execute runs the gate workflow for one trigger.
func (s *GateService) Execute(ctx context.Context, trigger domain.TriggerContext) error {
	ctx, span := s.tracer.Start(ctx, "gate.execute")
	defer span.End()
	span.SetAttributes(attribute.String("trigger", trigger.Kind.String()))

	changeSet, err := s.resolver.Resolve(ctx, trigger)
	if err != nil {
		return fmt.Errorf("resolving change set: %w", err)
	}

	dependencies := s.extractDependencies(ctx)
	matches := s.expandPromptGlobs()

	decision := domain.Decide(
		changeSet,
		dependencies,
		s.opts.ConfigPath,
		s.opts.PromptGlobs,
		matches,
		s.opts.ForceRun,
	)

	if decision.Degraded {
		s.logger.Warn("no diff available, evaluating every matched prompt file",
			"prompts", len(decision.Prompts))
	}
	s.logger.Info("run decision computed",
		"shouldRun", decision.ShouldRun,
		"reason", decision.Reason,
		"prompts", len(decision.Prompts),
	)
	s.runCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", decision.Reason.String()),
		attribute.Bool("run", decision.ShouldRun),
	))

	report := domain.RunReport{
		Trigger:    trigger,
		Decision:   decision,
		ConfigPath: s.opts.ConfigPath,
	}

	if !decision.ShouldRun {
		s.logger.Info("skipping evaluation", "reason", decision.Reason)
		s.report(ctx, report)
		return nil
	}

	prompts := decision.Prompts
	if s.opts.UseConfigPrompts {
		prompts = nil
	}

	result, err := s.runEval(ctx, prompts)
	if err != nil {
		return err
	}
	report.Eval = &result
	report.PromptDiffs = s.promptDiffs(ctx, trigger, changeSet, decision.Prompts)
	report.CacheBytes = s.cacheBytes()

	s.report(ctx, report)

	if !result.Passed() && s.opts.FailOnError {
		return domain.NewFatal(domain.CodeEvalFailed,
			fmt.Sprintf("%d of %d evaluations failed", result.Stats.Failures+result.Stats.Errors, result.Stats.Total()),
			"inspect the PR comment or step summary for failing cases")
	}
	return nil
}

// extractDependencies returns the config's dependency set. A broken config
// never aborts change detection; it only disables dependency triggering.
func (s *GateService) extractDependencies(ctx context.Context) []domain.Dependency {
	ctx, span := s.tracer.Start(ctx, "gate.extract_dependencies")
	defer span.End()

	deps, err := s.deps.Extract(ctx, s.opts.ConfigPath)
	if err != nil {
		s.logger.Warn("dependency extraction failed, continuing without dependency triggers",
			"config", s.opts.ConfigPath, "error", err)
		return nil
	}
	s.logger.Debug("extracted config dependencies", "count", len(deps))
	return deps
}

func (s *GateService) expandPromptGlobs() []string {
	var matches []string
	seen := make(map[string]struct{})
	for _, pattern := range s.opts.PromptGlobs {
		expanded, err := s.glob.Expand(pattern)
		if err != nil {
			s.logger.Warn("prompt glob did not expand", "pattern", pattern, "error", err)
			continue
		}
		for _, m := range expanded {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			matches = append(matches, m)
		}
	}
	return matches
}

func (s *GateService) runEval(ctx context.Context, prompts []string) (domain.EvalResult, error) {
	ctx, span := s.tracer.Start(ctx, "gate.eval")
	defer span.End()

	result, err := s.eval.Run(ctx, s.opts.ConfigPath, prompts)
	if err != nil {
		return domain.EvalResult{}, fmt.Errorf("running evaluation: %w", err)
	}
	s.logger.Info("evaluation finished",
		"successes", result.Stats.Successes,
		"failures", result.Stats.Failures,
		"errors", result.Stats.Errors,
		"share", result.ShareURL,
	)
	return result, nil
}

// promptDiffs renders unified diffs of the evaluated prompt files against
// the PR base, for the step summary. Only possible when a real base marker
// exists, so pushes and dispatches are skipped.
func (s *GateService) promptDiffs(
	ctx context.Context,
	trigger domain.TriggerContext,
	cs domain.ChangeSet,
	prompts []string,
) []domain.PromptDiff {
	if trigger.Kind != domain.TriggerPullRequest || !cs.Resolved {
		return nil
	}

	var diffs []domain.PromptDiff
	for _, path := range prompts {
		base, err := s.git.Show(ctx, MarkerBase, path)
		if err != nil {
			// New file on the head branch; diff against empty content.
			base = nil
		}
		head, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("cannot read prompt file for diff", "path", path, "error", err)
			continue
		}
		text := s.diff.ComputeDiff(
			trigger.BaseRef+":"+path,
			trigger.HeadRef+":"+path,
			base, head,
		)
		if text == "" {
			continue
		}
		diffs = append(diffs, domain.PromptDiff{Path: path, Diff: text})
	}
	return diffs
}

func (s *GateService) cacheBytes() int64 {
	if s.opts.CacheSize == nil {
		return 0
	}
	n, err := s.opts.CacheSize()
	if err != nil {
		s.logger.Warn("cache size unavailable", "error", err)
		return 0
	}
	return n
}

// report delivers the run report to whichever surfaces are configured.
// Reporting failures are logged but never fail the run.
func (s *GateService) report(ctx context.Context, report domain.RunReport) {
	if s.reporter != nil && report.Trigger.Kind == domain.TriggerPullRequest {
		if err := s.reporter.PostComment(ctx, report); err != nil {
			s.logger.Error("failed to post PR comment", "pr", report.Trigger.PRNumber, "error", err)
		}
	}
	if s.summary != nil {
		if err := s.summary.WriteSummary(report); err != nil {
			s.logger.Error("failed to write step summary", "error", err)
		}
	}
}
