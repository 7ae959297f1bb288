// Command eval-gate-cli dry-runs the gate's change detection against a
// local checkout, without invoking the evaluation CLI or GitHub.
package main

import (
	"fmt"
	"os"

	"github.com/nathantilsley/eval-gate/cmd/eval-gate-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
