// Package pricing estimates fee revenue per segment from the aggregated
// group metrics table. It needs no other pipeline output: volumes are
// reconstructed from transaction counts and per-transaction averages.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/segwise-dev/segwise/internal/metrics"
	"github.com/segwise-dev/segwise/internal/model"
)

// FeeSchedule is a named set of fees applied per category family.
type FeeSchedule struct {
	CardFeePct            float64 `yaml:"card_fee_pct"`
	InvestmentFeePct      float64 `yaml:"investment_fee_pct"`
	CryptoWithdrawFee     float64 `yaml:"crypto_withdraw_fee"` // flat, per withdrawal
	FiatTransferFeePct    float64 `yaml:"fiat_transfer_fee_pct"`
	MonthlyMaintenanceFee float64 `yaml:"monthly_maintenance_fee"` // flat, per user per month
}

// RevenueRow is the estimated revenue for one (month, segment) group, split
// by product.
type RevenueRow struct {
	Month        model.Month
	SegmentLabel string
	Users        int

	CardRevenue        decimal.Decimal
	InvestmentRevenue  decimal.Decimal
	WithdrawRevenue    decimal.Decimal
	FiatRevenue        decimal.Decimal
	MaintenanceRevenue decimal.Decimal
	TotalRevenue       decimal.Decimal
}

func familyVolume(r metrics.Row, fam model.Family) decimal.Decimal {
	fm := r.Families[fam]
	return fm.AvgPerTx.Mul(decimal.NewFromInt(int64(fm.TxCount)))
}

// RevenueBySegment applies a fee schedule to every group metrics row.
func RevenueBySegment(rows []metrics.Row, fees FeeSchedule) []RevenueRow {
	cardPct := decimal.NewFromFloat(fees.CardFeePct)
	investPct := decimal.NewFromFloat(fees.InvestmentFeePct)
	withdrawFee := decimal.NewFromFloat(fees.CryptoWithdrawFee)
	fiatPct := decimal.NewFromFloat(fees.FiatTransferFeePct)
	maintenance := decimal.NewFromFloat(fees.MonthlyMaintenanceFee)

	out := make([]RevenueRow, 0, len(rows))
	for _, r := range rows {
		rr := RevenueRow{
			Month:        r.Month,
			SegmentLabel: r.Segment.Label(),
			Users:        r.UserCount,
		}

		rr.CardRevenue = familyVolume(r, model.FamilyCard).Mul(cardPct)

		investVolume := familyVolume(r, model.FamilyInvestmentBuy).
			Add(familyVolume(r, model.FamilyInvestmentSell))
		rr.InvestmentRevenue = investVolume.Mul(investPct)

		withdrawCount := decimal.NewFromInt(int64(r.Families[model.FamilyCryptoWithdraw].TxCount))
		rr.WithdrawRevenue = withdrawCount.Mul(withdrawFee)

		fiatVolume := familyVolume(r, model.FamilyFiatDeposit).
			Add(familyVolume(r, model.FamilyFiatWithdraw))
		rr.FiatRevenue = fiatVolume.Mul(fiatPct)

		rr.MaintenanceRevenue = decimal.NewFromInt(int64(r.UserCount)).Mul(maintenance)

		rr.TotalRevenue = rr.CardRevenue.
			Add(rr.InvestmentRevenue).
			Add(rr.WithdrawRevenue).
			Add(rr.FiatRevenue).
			Add(rr.MaintenanceRevenue)
		out = append(out, rr)
	}
	return out
}

// ScenarioSummary compares one fee schedule's total against the base.
type ScenarioSummary struct {
	Name             string
	TotalRevenue     decimal.Decimal
	RevenuePerUser   decimal.Decimal
	RevenueChange    decimal.Decimal
	RevenueChangePct decimal.Decimal
}

func summarize(name string, revenue []RevenueRow) ScenarioSummary {
	total := decimal.Zero
	users := 0
	for _, r := range revenue {
		total = total.Add(r.TotalRevenue)
		users += r.Users
	}
	s := ScenarioSummary{Name: name, TotalRevenue: total}
	if users > 0 {
		s.RevenuePerUser = total.Div(decimal.NewFromInt(int64(users)))
	}
	return s
}

// CompareScenarios evaluates each scenario schedule against the base. The
// base appears first as "current"; scenarios follow sorted by total revenue
// descending.
func CompareScenarios(rows []metrics.Row, base FeeSchedule, scenarios map[string]FeeSchedule) []ScenarioSummary {
	current := summarize("current", RevenueBySegment(rows, base))
	out := []ScenarioSummary{current}

	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)

	var rest []ScenarioSummary
	for _, name := range names {
		s := summarize(name, RevenueBySegment(rows, scenarios[name]))
		s.RevenueChange = s.TotalRevenue.Sub(current.TotalRevenue)
		if !current.TotalRevenue.IsZero() {
			s.RevenueChangePct = s.RevenueChange.Div(current.TotalRevenue).Mul(decimal.NewFromInt(100))
		}
		rest = append(rest, s)
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].TotalRevenue.GreaterThan(rest[j].TotalRevenue)
	})
	return append(out, rest...)
}
