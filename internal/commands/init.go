package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/segwise-dev/segwise/internal/config"
	"github.com/segwise-dev/segwise/internal/pricing"
	"github.com/segwise-dev/segwise/internal/rules"
	"github.com/segwise-dev/segwise/internal/tiers"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write default configuration files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir)
		},
	}

	return cmd
}

// starterRules cover the well-known activity types. Rows for pairs outside
// this table surface as unresolved diagnostics on the first run.
func starterRules() []rules.Rule {
	mk := func(activityType, side string, e rules.Effect) rules.Rule {
		return rules.Rule{Key: rules.Key{ActivityType: activityType, Side: side}, Effect: e}
	}
	return []rules.Rule{
		mk("card", "hold_created", rules.EffectIgnored),
		mk("card", "hold_captured", rules.EffectDebit),
		mk("card", "hold_released", rules.EffectIgnored),
		mk("card", "debit", rules.EffectDebit),
		mk("card", "refund", rules.EffectCredit),
		mk("crypto_investment", "buy", rules.EffectDebit),
		mk("crypto_investment", "sell", rules.EffectCredit),
		mk("crypto_deposit", "credit", rules.EffectCredit),
		mk("crypto_withdraw", "debit", rules.EffectDebit),
		mk("cash_deposit", "credit", rules.EffectCredit),
		mk("cash_withdraw", "debit", rules.EffectDebit),
		mk("fiat_deposit", "credit", rules.EffectCredit),
		mk("fiat_withdraw", "debit", rules.EffectDebit),
	}
}

func writeStarterRules(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating rules file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write(strings.Split(rules.Header, ",")); err != nil {
		return fmt.Errorf("writing rules header: %w", err)
	}
	for _, r := range starterRules() {
		if err := cw.Write(rules.MarshalRule(r)); err != nil {
			return fmt.Errorf("writing rule %s: %w", r.Key, err)
		}
	}
	return cw.Error()
}

func runInit(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	if err := config.Save(filepath.Join(dir, "segwise.yaml"), config.Default()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	sf := &pricing.ScheduleFile{Base: pricing.DefaultSchedule()}
	if err := pricing.SaveSchedules(filepath.Join(dir, "fees.yaml"), sf); err != nil {
		return fmt.Errorf("writing fee schedule: %w", err)
	}

	if err := tiers.SaveFile(filepath.Join(dir, "tiers.yaml"), tiers.DefaultFile()); err != nil {
		return fmt.Errorf("writing tier config: %w", err)
	}

	if err := writeStarterRules(filepath.Join(dir, "rules.csv")); err != nil {
		return err
	}

	fmt.Printf("Initialized segwise project at %s\n", dir)
	return nil
}
