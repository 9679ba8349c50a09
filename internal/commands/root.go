package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/segwise-dev/segwise/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "segwise",
		Short:   "Monthly user segmentation from transaction ledgers",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newRevenueCommand())
	rootCmd.AddCommand(newTiersCommand())

	return rootCmd
}
