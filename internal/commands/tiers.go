package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/segwise-dev/segwise/internal/export"
	"github.com/segwise-dev/segwise/internal/tiers"
)

func newTiersCommand() *cobra.Command {
	var txPath, rulesPath, configPath, tiersPath, outDir string

	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Assign loyalty tiers and estimate reward costs",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runPipeline(txPath, rulesPath, configPath)
			if err != nil {
				return err
			}

			tf := tiers.DefaultFile()
			if tiersPath != "" {
				tf, err = tiers.LoadFile(tiersPath)
				if err != nil {
					return err
				}
			}

			assignments := tiers.Assign(res.Facts, tf.Thresholds)
			rewards, err := tiers.Rewards(res.Facts, assignments, tf.Rewards)
			if err != nil {
				return err
			}

			counts := tiers.Counts(assignments)
			err = export.ToFile(filepath.Join(outDir, "tier_counts.csv"), func(w io.Writer) error {
				return export.WriteTierCounts(w, counts)
			})
			if err != nil {
				return err
			}
			err = export.ToFile(filepath.Join(outDir, "tier_rewards.csv"), func(w io.Writer) error {
				return export.WriteRewards(w, rewards)
			})
			if err != nil {
				return err
			}

			fmt.Printf("Assigned tiers to %d user-months, wrote reward estimates to %s\n",
				len(assignments), outDir)
			return nil
		},
	}

	addPipelineFlags(cmd, &txPath, &rulesPath, &configPath)
	cmd.Flags().StringVar(&tiersPath, "tiers", "", "tier thresholds YAML (defaults apply when omitted)")
	cmd.Flags().StringVar(&outDir, "outdir", "out", "output directory")

	return cmd
}
