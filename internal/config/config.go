package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options represents the top-level segwise.yaml configuration controlling a
// pipeline run.
type Options struct {
	// ReportingCurrency is the single supported ledger currency; rows in any
	// other currency abort the load.
	ReportingCurrency string `yaml:"reporting_currency"`
	// UnresolvedTolerance is the maximum fraction of settled transactions
	// allowed to miss the rule table before the run aborts. Zero means any
	// unresolved pair is fatal.
	UnresolvedTolerance float64 `yaml:"unresolved_tolerance"`
	// IncludeInvestmentInSpend folds crypto-investment buy+sell volume into
	// the spend figure used for bucketing (deployment variant).
	IncludeInvestmentInSpend bool `yaml:"include_investment_in_spend"`
	// DedupeTransactions drops exact payload duplicates before processing;
	// when false they are only counted in diagnostics.
	DedupeTransactions bool `yaml:"dedupe_transactions"`
	// DenseGrid emits all 49 segments per month in the group metrics table.
	DenseGrid bool `yaml:"dense_grid"`
	// ClipToLastActivity stops each user's carry-forward at their last
	// active month instead of the window end.
	ClipToLastActivity bool `yaml:"clip_to_last_activity"`
}

// Default returns the options for a standard run.
func Default() Options {
	return Options{
		ReportingCurrency:   "eUSD",
		UnresolvedTolerance: 0,
	}
}

// Load reads a segwise.yaml file from disk.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading config: %w", err)
	}
	opts := Default()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Save writes Options to a YAML file.
func Save(path string, opts Options) error {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.ReportingCurrency == "" {
		return fmt.Errorf("reporting_currency must be set")
	}
	if o.UnresolvedTolerance < 0 || o.UnresolvedTolerance > 1 {
		return fmt.Errorf("unresolved_tolerance %v outside [0,1]", o.UnresolvedTolerance)
	}
	return nil
}
