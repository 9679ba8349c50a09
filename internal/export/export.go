// Package export writes the output tables of a run as CSV files. Decimal
// values are rendered with two fixed fraction digits at this boundary;
// everything upstream keeps full precision.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/segwise-dev/segwise/internal/metrics"
	"github.com/segwise-dev/segwise/internal/model"
	"github.com/segwise-dev/segwise/internal/pipeline"
	"github.com/segwise-dev/segwise/internal/pricing"
	"github.com/segwise-dev/segwise/internal/segment"
	"github.com/segwise-dev/segwise/internal/tiers"
)

// SegmentsHeader is the CSV header for user_segments.csv.
const SegmentsHeader = "user_id,month,balance_bucket,spend_bucket,segment_label"

// WriteUserSegments writes one row per user-month segment assignment.
func WriteUserSegments(w io.Writer, segs []pipeline.UserSegment) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(SegmentsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, s := range segs {
		rec := []string{
			s.UserID,
			s.Month.String(),
			segment.BalanceLabel(s.Segment.Balance),
			segment.SpendLabel(s.Segment.Spend),
			s.Segment.Label(),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MetricsHeader returns the CSV header for segment_metrics.csv. The three
// per-family columns repeat in the canonical family order.
func MetricsHeader() []string {
	header := []string{"month", "segment", "user_count", "avg_balance"}
	for _, fam := range model.Families() {
		header = append(header,
			string(fam)+"_tx_count",
			string(fam)+"_avg_tx_value",
			string(fam)+"_avg_per_user",
		)
	}
	return header
}

// WriteGroupMetrics writes the per-(month, segment) metrics table.
func WriteGroupMetrics(w io.Writer, rows []metrics.Row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(MetricsHeader()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		rec := []string{
			r.Month.String(),
			r.Segment.Label(),
			strconv.Itoa(r.UserCount),
			r.AvgBalance.StringFixed(2),
		}
		for _, fam := range model.Families() {
			fm := r.Families[fam]
			rec = append(rec,
				strconv.Itoa(fm.TxCount),
				fm.AvgPerTx.StringFixed(2),
				fm.AvgPerUser.StringFixed(2),
			)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// DistributionHeader is the CSV header for segment_distribution.csv.
const DistributionHeader = "month,segment,user_count,pct_of_month"

// WriteDistribution writes the segment population distribution.
func WriteDistribution(w io.Writer, rows []metrics.DistributionRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(DistributionHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		rec := []string{
			r.Month.String(),
			r.Segment.Label(),
			strconv.Itoa(r.UserCount),
			r.Percentage.StringFixed(2),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// DiagnosticsHeader is the CSV header for diagnostics.csv.
const DiagnosticsHeader = "metric,value"

// WriteDiagnostics writes run diagnostics as metric/value pairs. Unresolved
// rule pairs appear as one row each, keyed unresolved_pair:<type>/<side>.
func WriteDiagnostics(w io.Writer, d pipeline.Diagnostics) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(DiagnosticsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	rows := [][2]string{
		{"total_rows", strconv.Itoa(d.TotalRows)},
		{"settled_rows", strconv.Itoa(d.SettledRows)},
		{"non_settled_excluded", strconv.Itoa(d.NonSettledExcluded)},
		{"duplicate_rows", strconv.Itoa(d.DuplicateRows)},
		{"duplicates_dropped", strconv.Itoa(d.DuplicatesDropped)},
		{"out_of_order_rows", strconv.Itoa(d.OutOfOrderRows)},
		{"unresolved_excluded", strconv.Itoa(d.UnresolvedExcluded)},
		{"zero_settled_users", strconv.Itoa(d.ZeroSettledUsers)},
		{"carried_forward_months", strconv.Itoa(d.CarriedForwardMonths)},
		{"carry_forward_users", strconv.Itoa(d.CarryForwardUsers)},
	}
	for _, p := range d.UnresolvedPairs {
		rows = append(rows, [2]string{
			"unresolved_pair:" + p.Key.String(),
			strconv.Itoa(p.Count),
		})
	}

	for i, r := range rows {
		if err := cw.Write(r[:]); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// RevenueHeader is the CSV header for segment_revenue.csv.
const RevenueHeader = "month,segment,users,card_revenue,investment_revenue,withdraw_revenue,fiat_revenue,maintenance_revenue,total_revenue"

// WriteRevenue writes modeled revenue per (month, segment).
func WriteRevenue(w io.Writer, rows []pricing.RevenueRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(RevenueHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		rec := []string{
			r.Month.String(),
			r.SegmentLabel,
			strconv.Itoa(r.Users),
			r.CardRevenue.StringFixed(2),
			r.InvestmentRevenue.StringFixed(2),
			r.WithdrawRevenue.StringFixed(2),
			r.FiatRevenue.StringFixed(2),
			r.MaintenanceRevenue.StringFixed(2),
			r.TotalRevenue.StringFixed(2),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ScenariosHeader is the CSV header for revenue_scenarios.csv.
const ScenariosHeader = "scenario,total_revenue,revenue_per_user,revenue_change,revenue_change_pct"

// WriteScenarios writes the fee scenario comparison.
func WriteScenarios(w io.Writer, sums []pricing.ScenarioSummary) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(ScenariosHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, s := range sums {
		rec := []string{
			s.Name,
			s.TotalRevenue.StringFixed(2),
			s.RevenuePerUser.StringFixed(2),
			s.RevenueChange.StringFixed(2),
			s.RevenueChangePct.StringFixed(2),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// TierCountsHeader is the CSV header for tier_counts.csv.
const TierCountsHeader = "month,tier,users"

// WriteTierCounts writes the tier population per month.
func WriteTierCounts(w io.Writer, counts []tiers.TierCount) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(TierCountsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, c := range counts {
		rec := []string{c.Month.String(), c.Tier.String(), strconv.Itoa(c.Users)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// RewardsHeader is the CSV header for tier_rewards.csv.
const RewardsHeader = "user_id,month,tier,cashback,yield,total"

// WriteRewards writes the per-user-month reward cost estimate.
func WriteRewards(w io.Writer, rows []tiers.RewardRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(RewardsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		rec := []string{
			r.UserID,
			r.Month.String(),
			r.Tier.String(),
			r.Cashback.StringFixed(2),
			r.Yield.StringFixed(2),
			r.Total.StringFixed(2),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ToFile writes one table through write into path, creating parent
// directories as needed.
func ToFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Results writes the standard output tables of a run into dir.
func Results(dir string, res *pipeline.Result) error {
	tables := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"user_segments.csv", func(w io.Writer) error { return WriteUserSegments(w, res.Segments) }},
		{"segment_metrics.csv", func(w io.Writer) error { return WriteGroupMetrics(w, res.Metrics) }},
		{"segment_distribution.csv", func(w io.Writer) error { return WriteDistribution(w, res.Distribution) }},
		{"diagnostics.csv", func(w io.Writer) error { return WriteDiagnostics(w, res.Diagnostics) }},
	}
	for _, tb := range tables {
		if err := ToFile(filepath.Join(dir, tb.name), tb.write); err != nil {
			return err
		}
	}
	return nil
}
