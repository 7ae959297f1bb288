package domain

// Reason explains why a run proceeds or is skipped.
type Reason int

const (
	ReasonFilesChanged Reason = iota
	ReasonConfigChanged
	ReasonDependencyChanged
	ReasonForcedRun
	ReasonNoChangesDetected
	ReasonNoPromptsConfigured
)

// String returns the string representation of the Reason.
// Implements the Stringer interface.
func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "Unknown"
	}
	return reasonNames[r]
}

var reasonNames = [...]string{
	ReasonFilesChanged:        "FilesChanged",
	ReasonConfigChanged:       "ConfigChanged",
	ReasonDependencyChanged:   "DependencyChanged",
	ReasonForcedRun:           "ForcedRun",
	ReasonNoChangesDetected:   "NoChangesDetected",
	ReasonNoPromptsConfigured: "NoPromptsConfigured",
}

// Decision is the outcome of the run/skip computation. Prompts holds the
// working prompt-file list handed to the evaluation step. Degraded is true
// when the change set was never resolved, so callers can log that case
// apart from a genuinely empty diff.
type Decision struct {
	ShouldRun bool
	Reason    Reason
	Prompts   []string
	Degraded  bool
}

// Decide combines the change set, extracted dependencies, the expanded
// prompt globs, and the force-run flag into a single Decision. promptGlobs
// is the user-configured pattern list; promptMatches is its filesystem
// expansion, captured by the caller so this function stays pure.
//
// An empty promptGlobs list means "defer entirely to config-driven prompts"
// and always runs. Globs that are configured but match nothing relevant
// skip, the same as an unchanged working tree.
func Decide(
	cs ChangeSet,
	deps []Dependency,
	configPath string,
	promptGlobs []string,
	promptMatches []string,
	forceRun bool,
) Decision {
	// Working prompt-file list: filtered by the diff when one exists,
	// everything the globs matched otherwise.
	var working []string
	if cs.Resolved {
		for _, m := range promptMatches {
			if cs.Contains(m) {
				working = append(working, m)
			}
		}
	} else {
		working = promptMatches
	}

	d := Decision{Prompts: working, Degraded: !cs.Resolved}

	configChanged := cs.Resolved && configPath != "" && cs.Contains(configPath)

	dependencyChanged := false
	for _, dep := range deps {
		for _, f := range cs.Files {
			if dep.Covers(f) {
				dependencyChanged = true
				break
			}
		}
		if dependencyChanged {
			break
		}
	}

	switch {
	case forceRun:
		d.ShouldRun, d.Reason = true, ReasonForcedRun
	case len(promptGlobs) == 0:
		d.ShouldRun, d.Reason = true, ReasonNoPromptsConfigured
	case len(working) > 0:
		d.ShouldRun, d.Reason = true, ReasonFilesChanged
	case configChanged:
		d.ShouldRun, d.Reason = true, ReasonConfigChanged
	case dependencyChanged:
		d.ShouldRun, d.Reason = true, ReasonDependencyChanged
	case !cs.Resolved:
		// No diff available: process everything the globs matched.
		d.ShouldRun, d.Reason = true, ReasonFilesChanged
	default:
		d.ShouldRun, d.Reason = false, ReasonNoChangesDetected
	}

	return d
}
