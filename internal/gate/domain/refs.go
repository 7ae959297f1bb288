package domain

import "strings"

// ValidateRef rejects git refs that a spawned git process could mistake for
// a command-line option. Anything starting with "-" is refused outright.
// Unusual-but-legal branch names (spaces included) are deliberately allowed
// here; git itself rejects malformed refspecs and that error is propagated
// by the caller.
func ValidateRef(ref string) error {
	if ref == "" {
		return NewFatal(CodeInvalidRef, "empty git ref", "check the event payload or base-ref input")
	}
	if strings.HasPrefix(ref, "-") {
		return NewFatal(CodeInvalidRef,
			"git ref "+ref+" starts with a dash and could be parsed as an option",
			"refuse refs supplied by untrusted sources or quote the branch name")
	}
	return nil
}
