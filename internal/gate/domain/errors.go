package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable machine-readable identifier for fatal failures.
type ErrorCode string

const (
	CodeInvalidRef     ErrorCode = "invalid_ref"
	CodeMissingPayload ErrorCode = "missing_payload"
	CodeEvalFailed     ErrorCode = "eval_failed"
)

// FatalError aborts the whole run. Degraded conditions (push diff failures,
// broken configs, unsupported events) are never represented as FatalError;
// they are logged warnings and the run continues with reduced precision.
type FatalError struct {
	Code    ErrorCode
	Message string
	Hint    string // remediation hint surfaced to the workflow log
}

// NewFatal creates a FatalError with a stable code and a remediation hint.
func NewFatal(code ErrorCode, message, hint string) *FatalError {
	return &FatalError{Code: code, Message: message, Hint: hint}
}

func (e *FatalError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (hint: %s)", e.Code, e.Message, e.Hint)
}

// IsFatal reports whether err is (or wraps) a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// AsFatal returns the wrapped FatalError, or nil if err is not fatal.
func AsFatal(err error) *FatalError {
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}
