package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/segwise-dev/segwise/internal/config"
	"github.com/segwise-dev/segwise/internal/export"
	"github.com/segwise-dev/segwise/internal/ledger"
	"github.com/segwise-dev/segwise/internal/pipeline"
	"github.com/segwise-dev/segwise/internal/rules"
)

func newRunCommand() *cobra.Command {
	var txPath, rulesPath, configPath, outDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Segment users and write the metrics tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runPipeline(txPath, rulesPath, configPath)
			if err != nil {
				return err
			}
			if err := export.Results(outDir, res); err != nil {
				return err
			}
			fmt.Printf("Wrote %d segment rows for %d user-months to %s\n",
				len(res.Metrics), len(res.Segments), outDir)
			return nil
		},
	}

	addPipelineFlags(cmd, &txPath, &rulesPath, &configPath)
	cmd.Flags().StringVar(&outDir, "outdir", "out", "output directory")

	return cmd
}

func addPipelineFlags(cmd *cobra.Command, txPath, rulesPath, configPath *string) {
	cmd.Flags().StringVar(txPath, "transactions", "", "transactions CSV (required)")
	_ = cmd.MarkFlagRequired("transactions")
	cmd.Flags().StringVar(rulesPath, "rules", "", "balance-effect rules CSV (required)")
	_ = cmd.MarkFlagRequired("rules")
	cmd.Flags().StringVar(configPath, "config", "", "segwise.yaml (defaults apply when omitted)")
}

// runPipeline loads the inputs and executes a full aggregation run.
func runPipeline(txPath, rulesPath, configPath string) (*pipeline.Result, error) {
	opts := config.Default()
	if configPath != "" {
		var err error
		opts, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	}

	table, err := rules.Load(rulesPath)
	if err != nil {
		return nil, err
	}

	txns, err := ledger.LoadFile(txPath)
	if err != nil {
		return nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	return pipeline.Run(logger, txns, table, opts)
}
