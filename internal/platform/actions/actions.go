// Package actions emits GitHub Actions workflow commands.
package actions

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Commander writes workflow commands (::name::value) to the runner's log
// stream, where the runner interprets them.
type Commander struct {
	w io.Writer
}

// New creates a Commander writing to stdout.
func New() *Commander {
	return &Commander{w: os.Stdout}
}

// NewWithWriter creates a Commander with a custom writer, for tests.
func NewWithWriter(w io.Writer) *Commander {
	return &Commander{w: w}
}

// Mask registers a secret with the runner so every future occurrence in the
// log is redacted. Must run before the secret can appear anywhere.
func (c *Commander) Mask(secret string) {
	if secret == "" {
		return
	}
	fmt.Fprintf(c.w, "::add-mask::%s\n", escapeData(secret))
}

// MaskAll masks every non-empty secret in the list.
func (c *Commander) MaskAll(secrets ...string) {
	for _, s := range secrets {
		c.Mask(s)
	}
}

// Warning emits a warning annotation on the workflow run.
func (c *Commander) Warning(msg string) {
	fmt.Fprintf(c.w, "::warning::%s\n", escapeData(msg))
}

// Error emits an error annotation on the workflow run.
func (c *Commander) Error(msg string) {
	fmt.Fprintf(c.w, "::error::%s\n", escapeData(msg))
}

// Notice emits a notice annotation on the workflow run.
func (c *Commander) Notice(msg string) {
	fmt.Fprintf(c.w, "::notice::%s\n", escapeData(msg))
}

// escapeData encodes the characters the runner treats specially in command
// data.
func escapeData(s string) string {
	r := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	return r.Replace(s)
}
