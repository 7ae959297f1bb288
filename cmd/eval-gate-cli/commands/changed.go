package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gitcli "github.com/nathantilsley/eval-gate/internal/gate/adapters/git_cli"
	"github.com/nathantilsley/eval-gate/internal/gate/app"
	"github.com/nathantilsley/eval-gate/internal/gate/domain"
)

// NewChangedCmd creates the changed command.
func NewChangedCmd() *cobra.Command {
	var (
		baseRef string
		files   []string
	)

	cmd := &cobra.Command{
		Use:   "changed",
		Short: "Resolve the change set the gate would see",
		Long: `Resolve a change set against the local repository, the way a manual
dispatch would: an explicit --files list wins, otherwise --base (default
HEAD~1) is compared against HEAD.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger()

			workDir, err := os.Getwd()
			if err != nil {
				return err
			}
			git, err := gitcli.New(workDir, log)
			if err != nil {
				return err
			}

			resolver := app.NewChangeSetResolver(git, log)
			cs, err := resolver.Resolve(cmd.Context(), domain.TriggerContext{
				Kind:            domain.TriggerManualDispatch,
				FilesOverride:   files,
				BaseRefOverride: baseRef,
			})
			if err != nil {
				return err
			}

			if !cs.Resolved {
				fmt.Fprintln(cmd.OutOrStdout(), "change set unresolved (degraded mode)")
				return nil
			}
			for _, f := range cs.Files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseRef, "base", "", "base ref to diff HEAD against (default HEAD~1)")
	cmd.Flags().StringSliceVar(&files, "files", nil, "explicit changed-file list, skips git")
	return cmd
}
