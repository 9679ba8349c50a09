// Package pipeline wires the ledger-to-segment stages together: rule
// coverage, balance replay, spend aggregation, segment assignment and group
// metrics, with a diagnostics summary for the run.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/segwise-dev/segwise/internal/config"
	"github.com/segwise-dev/segwise/internal/facts"
	"github.com/segwise-dev/segwise/internal/ledger"
	"github.com/segwise-dev/segwise/internal/metrics"
	"github.com/segwise-dev/segwise/internal/model"
	"github.com/segwise-dev/segwise/internal/rules"
	"github.com/segwise-dev/segwise/internal/segment"
)

// UserSegment is one row of the per-user-month segmentation table.
type UserSegment struct {
	UserID  string
	Month   model.Month
	Segment segment.Segment
}

// Result holds every output table of a run.
type Result struct {
	Window       facts.Window
	Facts        []model.UserMonthFact
	Segments     []UserSegment
	Metrics      []metrics.Row
	Distribution []metrics.DistributionRow
	Diagnostics  Diagnostics
}

// Run executes the full aggregation over an in-memory ledger. Inputs are
// loaded fully before processing; no output is produced on a fatal error.
func Run(logger *zap.Logger, txns []model.Transaction, table *rules.Table, opts config.Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ledger.CheckCurrency(txns, opts.ReportingCurrency); err != nil {
		return nil, err
	}

	var diag Diagnostics
	diag.TotalRows = len(txns)

	quality := ledger.Quality(txns)
	diag.DuplicateRows = quality.DuplicateRows
	diag.OutOfOrderRows = quality.OutOfOrderRows

	if opts.DedupeTransactions {
		txns, diag.DuplicatesDropped = ledger.Dedupe(txns)
	}

	settled := facts.Settled(txns)
	diag.SettledRows = len(settled)
	diag.NonSettledExcluded = len(txns) - len(settled)
	diag.ZeroSettledUsers = distinctUsers(txns) - distinctUsers(settled)

	logger.Info("ledger loaded",
		zap.Int("rows", diag.TotalRows),
		zap.Int("settled", diag.SettledRows),
		zap.Int("duplicates", diag.DuplicateRows),
		zap.Int("out_of_order", diag.OutOfOrderRows))

	settled, err := applyCoverage(&diag, settled, table, opts.UnresolvedTolerance)
	if err != nil {
		return nil, err
	}

	factRows, window, err := facts.Build(settled, table, opts.ClipToLastActivity)
	if err != nil {
		return nil, err
	}
	for _, f := range factRows {
		if !f.Active {
			diag.CarriedForwardMonths++
		}
	}
	diag.CarryForwardUsers = countCarryForwardUsers(factRows)

	logger.Info("facts built",
		zap.Int("user_months", len(factRows)),
		zap.String("window_first", window.First.String()),
		zap.String("window_last", window.Last.String()),
		zap.Int("carried_forward_months", diag.CarriedForwardMonths))

	segments := make([]UserSegment, 0, len(factRows))
	for _, f := range factRows {
		segments = append(segments, UserSegment{
			UserID:  f.UserID,
			Month:   f.Month,
			Segment: segment.Assign(f.ClosingBalance, f.SpendForBucketing(opts.IncludeInvestmentInSpend)),
		})
	}

	rows := metrics.Aggregate(factRows, metrics.Options{
		IncludeInvestmentInSpend: opts.IncludeInvestmentInSpend,
		DenseGrid:                opts.DenseGrid,
	})
	dist := metrics.Distribution(rows)

	logger.Info("segments aggregated",
		zap.Int("metric_rows", len(rows)),
		zap.Int("unresolved_excluded", diag.UnresolvedExcluded),
		zap.Int("zero_settled_users", diag.ZeroSettledUsers))

	return &Result{
		Window:       window,
		Facts:        factRows,
		Segments:     segments,
		Metrics:      rows,
		Distribution: dist,
		Diagnostics:  diag,
	}, nil
}

// applyCoverage enforces the resolution-error policy: any unresolved pair is
// fatal unless the affected fraction stays within tolerance, in which case
// the affected transactions are excluded and recorded in diagnostics.
func applyCoverage(diag *Diagnostics, settled []model.Transaction, table *rules.Table, tolerance float64) ([]model.Transaction, error) {
	uerr := table.Coverage(settled)
	if uerr == nil {
		return settled, nil
	}

	fraction := float64(uerr.Total) / float64(len(settled))
	if fraction > tolerance {
		return nil, fmt.Errorf("rule coverage: %w", uerr)
	}

	diag.UnresolvedPairs = uerr.Pairs
	diag.UnresolvedExcluded = uerr.Total

	kept := make([]model.Transaction, 0, len(settled)-uerr.Total)
	for _, tx := range settled {
		if _, ok := table.Resolve(tx.ActivityType, tx.Side); ok {
			kept = append(kept, tx)
		}
	}
	return kept, nil
}

func distinctUsers(txns []model.Transaction) int {
	users := make(map[string]bool, len(txns))
	for _, tx := range txns {
		users[tx.UserID] = true
	}
	return len(users)
}

func countCarryForwardUsers(factRows []model.UserMonthFact) int {
	users := make(map[string]bool)
	for _, f := range factRows {
		if !f.Active {
			users[f.UserID] = true
		}
	}
	return len(users)
}
