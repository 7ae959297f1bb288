package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configdeps "github.com/nathantilsley/eval-gate/internal/gate/adapters/config_deps"
	gitcli "github.com/nathantilsley/eval-gate/internal/gate/adapters/git_cli"
	globfs "github.com/nathantilsley/eval-gate/internal/gate/adapters/glob_fs"
	"github.com/nathantilsley/eval-gate/internal/gate/app"
	"github.com/nathantilsley/eval-gate/internal/gate/domain"
)

// NewDecideCmd creates the decide command.
func NewDecideCmd() *cobra.Command {
	var (
		configPath string
		prompts    []string
		baseRef    string
		files      []string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Compute the run/skip decision without evaluating anything",
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

			glob := globfs.New()
			deps, err := configdeps.New(glob, workDir, log).Extract(cmd.Context(), configPath)
			if err != nil {
				return err
			}

			var matches []string
			for _, pattern := range prompts {
				expanded, err := glob.Expand(pattern)
				if err != nil {
					log.Warn("prompt glob did not expand", "pattern", pattern, "error", err)
					continue
				}
				matches = append(matches, expanded...)
			}

			decision := domain.Decide(cs, deps, configPath, prompts, matches, force)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "shouldRun: %v\n", decision.ShouldRun)
			fmt.Fprintf(out, "reason:    %s\n", decision.Reason)
			fmt.Fprintf(out, "degraded:  %v\n", decision.Degraded)
			for _, p := range decision.Prompts {
				fmt.Fprintf(out, "prompt:    %s\n", p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "promptfooconfig.yaml", "evaluation config path")
	cmd.Flags().StringSliceVarP(&prompts, "prompts", "p", nil, "prompt file globs")
	cmd.Flags().StringVar(&baseRef, "base", "", "base ref to diff HEAD against (default HEAD~1)")
	cmd.Flags().StringSliceVar(&files, "files", nil, "explicit changed-file list, skips git")
	cmd.Flags().BoolVar(&force, "force", false, "force the run regardless of changes")
	return cmd
}
