package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configdeps "github.com/nathantilsley/eval-gate/internal/gate/adapters/config_deps"
	globfs "github.com/nathantilsley/eval-gate/internal/gate/adapters/glob_fs"
)

// NewDepsCmd creates the deps command.
func NewDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <config>",
		Short: "Print the file dependencies an evaluation config declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			workDir, err := os.Getwd()
			if err != nil {
				return err
			}

			extractor := configdeps.New(globfs.New(), workDir, log)
			deps, err := extractor.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			for _, d := range deps {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", d.Kind, d.Path)
			}
			return nil
		},
	}
}
