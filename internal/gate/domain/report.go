package domain

// EvalStats aggregates the outcome counts of an evaluation run.
type EvalStats struct {
	Successes int
	Failures  int
	Errors    int
}

// Total returns the number of evaluated cases.
func (s EvalStats) Total() int {
	return s.Successes + s.Failures + s.Errors
}

// EvalResult is what the external evaluation CLI produced for one run.
type EvalResult struct {
	Stats      EvalStats
	ShareURL   string // empty when sharing is disabled
	OutputPath string // location of the raw JSON output file
}

// Passed reports whether the run had no failing or erroring cases.
func (r EvalResult) Passed() bool {
	return r.Stats.Failures == 0 && r.Stats.Errors == 0
}

// PromptDiff is a unified diff of one changed prompt file between the base
// ref and the working tree, rendered for the workflow summary.
type PromptDiff struct {
	Path string
	Diff string
}

// RunReport bundles everything the reporting adapters need to describe a
// finished (or skipped) run.
type RunReport struct {
	Trigger     TriggerContext
	Decision    Decision
	ConfigPath  string
	Eval        *EvalResult // nil when the run was skipped
	PromptDiffs []PromptDiff
	CacheBytes  int64 // total size of the eval cache after the run, 0 if unused
}
