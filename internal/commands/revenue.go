package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/segwise-dev/segwise/internal/export"
	"github.com/segwise-dev/segwise/internal/pricing"
)

func newRevenueCommand() *cobra.Command {
	var txPath, rulesPath, configPath, feesPath, outDir string

	cmd := &cobra.Command{
		Use:   "revenue",
		Short: "Model fee revenue per segment and compare pricing scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runPipeline(txPath, rulesPath, configPath)
			if err != nil {
				return err
			}

			sf := &pricing.ScheduleFile{Base: pricing.DefaultSchedule()}
			if feesPath != "" {
				sf, err = pricing.LoadSchedules(feesPath)
				if err != nil {
					return err
				}
			}

			revenue := pricing.RevenueBySegment(res.Metrics, sf.Base)
			err = export.ToFile(filepath.Join(outDir, "segment_revenue.csv"), func(w io.Writer) error {
				return export.WriteRevenue(w, revenue)
			})
			if err != nil {
				return err
			}

			if len(sf.Scenarios) > 0 {
				sums := pricing.CompareScenarios(res.Metrics, sf.Base, sf.Scenarios)
				err = export.ToFile(filepath.Join(outDir, "revenue_scenarios.csv"), func(w io.Writer) error {
					return export.WriteScenarios(w, sums)
				})
				if err != nil {
					return err
				}
			}

			fmt.Printf("Wrote revenue for %d segment rows (%d scenarios) to %s\n",
				len(revenue), len(sf.Scenarios), outDir)
			return nil
		},
	}

	addPipelineFlags(cmd, &txPath, &rulesPath, &configPath)
	cmd.Flags().StringVar(&feesPath, "fees", "", "fee schedule YAML (defaults apply when omitted)")
	cmd.Flags().StringVar(&outDir, "outdir", "out", "output directory")

	return cmd
}
