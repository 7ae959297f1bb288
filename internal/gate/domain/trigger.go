package domain

// TriggerKind identifies which CI event started the current run.
type TriggerKind int

const (
	TriggerPullRequest TriggerKind = iota
	TriggerPush
	TriggerManualDispatch
	TriggerUnsupported
)

// String returns the string representation of the TriggerKind.
// Implements the Stringer interface.
func (k TriggerKind) String() string {
	if k < 0 || int(k) >= len(triggerKindNames) {
		return "Unknown"
	}
	return triggerKindNames[k]
}

var triggerKindNames = [...]string{
	TriggerPullRequest:    "PullRequest",
	TriggerPush:           "Push",
	TriggerManualDispatch: "ManualDispatch",
	TriggerUnsupported:    "Unsupported",
}

// TriggerContext describes the event that started a run. Exactly one variant
// is populated, selected by Kind; it is built once from the CI event payload
// and never mutated afterwards.
type TriggerContext struct {
	Kind TriggerKind

	// PullRequest fields
	BaseRef  string
	HeadRef  string
	PRNumber int

	// Push fields
	BeforeSHA string
	AfterSHA  string

	// ManualDispatch fields
	FilesOverride   []string
	BaseRefOverride string

	// Unsupported fields
	EventName string
}

// ZeroSHA is the before-SHA GitHub sends for the first push of a branch,
// meaning there is no prior commit to diff against.
const ZeroSHA = "0000000000000000000000000000000000000000"

// ChangeSet is the ordered list of repository-relative paths considered
// modified for the current trigger. Resolved=false means a real diff could
// not be computed and callers must treat every candidate file as changed.
// That is a degraded mode, not an error.
type ChangeSet struct {
	Files    []string
	Resolved bool
}

// Contains reports whether path appears verbatim in the change set.
func (c ChangeSet) Contains(path string) bool {
	for _, f := range c.Files {
		if f == path {
			return true
		}
	}
	return false
}
