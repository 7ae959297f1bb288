// Package commands defines the eval-gate-cli command tree.
package commands

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nathantilsley/eval-gate/internal/platform/logger"
)

// Execute builds the command tree and runs it.
func Execute() error {
	// Local convenience: pick up secrets and overrides from .env if present.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "eval-gate-cli",
		Short: "Dry-run eval-gate change detection against a local checkout",
		Long: `eval-gate-cli exercises the change-set resolver, the config dependency
extractor, and the run/skip decision locally, without calling the
evaluation CLI or the GitHub API.`,
		SilenceUsage: true,
	}

	root.AddCommand(NewChangedCmd())
	root.AddCommand(NewDepsCmd())
	root.AddCommand(NewDecideCmd())

	return root.Execute()
}

// newLogger creates the logger shared by all subcommands.
func newLogger() *slog.Logger {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	return logger.New(level, nil)
}
