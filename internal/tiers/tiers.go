// Package tiers assigns a loyalty tier to each user-month from spend or
// balance thresholds and estimates the reward cost of each tier. Every user
// starts at the top tier in their first month; after that they can climb any
// number of tiers in a month but descend at most one.
package tiers

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/segwise-dev/segwise/internal/model"
)

// Tier is a loyalty level, tier1 (base) through tier4.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
	Tier4
)

func (t Tier) String() string {
	return fmt.Sprintf("tier%d", int(t))
}

// Thresholds qualify a user-month for a tier on monthly card spend OR
// end-of-month balance, whichever is met.
type Thresholds struct {
	Tier2Spend float64 `yaml:"tier2_spend"`
	Tier3Spend float64 `yaml:"tier3_spend"`
	Tier4Spend float64 `yaml:"tier4_spend"`

	Tier2Balance float64 `yaml:"tier2_balance"`
	Tier3Balance float64 `yaml:"tier3_balance"`
	Tier4Balance float64 `yaml:"tier4_balance"`
}

// DefaultThresholds returns the documented production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Tier2Spend: 300, Tier3Spend: 500, Tier4Spend: 1000,
		Tier2Balance: 200, Tier3Balance: 500, Tier4Balance: 2000,
	}
}

func (th Thresholds) qualify(spend, balance decimal.Decimal) Tier {
	meets := func(s, b float64) bool {
		return spend.GreaterThanOrEqual(decimal.NewFromFloat(s)) ||
			balance.GreaterThanOrEqual(decimal.NewFromFloat(b))
	}
	switch {
	case meets(th.Tier4Spend, th.Tier4Balance):
		return Tier4
	case meets(th.Tier3Spend, th.Tier3Balance):
		return Tier3
	case meets(th.Tier2Spend, th.Tier2Balance):
		return Tier2
	}
	return Tier1
}

// UserTier is one user-month tier assignment.
type UserTier struct {
	UserID string
	Month  model.Month
	Tier   Tier
}

// Assign computes a tier per user-month. Every user starts at Tier4 in
// their first observed month; from the second month on they hold the
// qualified tier, descending at most one level per month. Facts must be
// ordered by user then month, as the fact builder produces them; the result
// is index-aligned with the input.
func Assign(facts []model.UserMonthFact, th Thresholds) []UserTier {
	out := make([]UserTier, 0, len(facts))
	prev := make(map[string]Tier)

	for _, f := range facts {
		t := Tier4
		if p, ok := prev[f.UserID]; ok {
			t = th.qualify(f.CardSpend(), f.ClosingBalance)
			if t < p-1 {
				t = p - 1
			}
		}
		prev[f.UserID] = t
		out = append(out, UserTier{UserID: f.UserID, Month: f.Month, Tier: t})
	}
	return out
}

// TierCount is the user population of one tier in one month.
type TierCount struct {
	Month model.Month
	Tier  Tier
	Users int
}

// Counts tallies users per (month, tier), sorted by month then tier.
func Counts(assignments []UserTier) []TierCount {
	type key struct {
		month model.Month
		tier  Tier
	}
	counts := make(map[key]int)
	for _, a := range assignments {
		counts[key{month: a.Month, tier: a.Tier}]++
	}

	out := make([]TierCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, TierCount{Month: k.month, Tier: k.tier, Users: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month.Before(out[j].Month)
		}
		return out[i].Tier < out[j].Tier
	})
	return out
}

// RewardParams price the monthly benefits of each tier: cashback on card
// spend plus extra yield on balances up to the yield cap.
type RewardParams struct {
	Tier2CashbackPct float64 `yaml:"tier2_cashback_pct"`
	Tier3CashbackPct float64 `yaml:"tier3_cashback_pct"`
	Tier4CashbackPct float64 `yaml:"tier4_cashback_pct"`

	Tier2YieldPct float64 `yaml:"tier2_yield_pct"`
	Tier3YieldPct float64 `yaml:"tier3_yield_pct"`
	Tier4YieldPct float64 `yaml:"tier4_yield_pct"`
}

// DefaultRewardParams returns the documented reward assumptions.
func DefaultRewardParams() RewardParams {
	return RewardParams{
		Tier2CashbackPct: 0.005, Tier3CashbackPct: 0.01, Tier4CashbackPct: 0.02,
		Tier2YieldPct: 0.0015, Tier3YieldPct: 0.003, Tier4YieldPct: 0.006,
	}
}

func (rp RewardParams) cashbackPct(t Tier) float64 {
	switch t {
	case Tier2:
		return rp.Tier2CashbackPct
	case Tier3:
		return rp.Tier3CashbackPct
	case Tier4:
		return rp.Tier4CashbackPct
	}
	return 0
}

func (rp RewardParams) yieldPct(t Tier) float64 {
	switch t {
	case Tier2:
		return rp.Tier2YieldPct
	case Tier3:
		return rp.Tier3YieldPct
	case Tier4:
		return rp.Tier4YieldPct
	}
	return 0
}

var yieldCap = decimal.NewFromInt(1000)

// RewardRow is the estimated monthly reward cost for one user-month.
type RewardRow struct {
	UserID   string
	Month    model.Month
	Tier     Tier
	Cashback decimal.Decimal
	Yield    decimal.Decimal
	Total    decimal.Decimal
}

// Rewards prices the assigned tiers. Assignments must be index-aligned with
// facts, as Assign returns them.
func Rewards(facts []model.UserMonthFact, assignments []UserTier, rp RewardParams) ([]RewardRow, error) {
	if len(facts) != len(assignments) {
		return nil, fmt.Errorf("got %d assignments for %d facts", len(assignments), len(facts))
	}

	out := make([]RewardRow, 0, len(facts))
	for i, f := range facts {
		t := assignments[i].Tier

		cashback := f.CardSpend().Mul(decimal.NewFromFloat(rp.cashbackPct(t)))

		base := f.ClosingBalance
		if base.IsNegative() {
			base = decimal.Zero
		}
		if base.GreaterThan(yieldCap) {
			base = yieldCap
		}
		yield := base.Mul(decimal.NewFromFloat(rp.yieldPct(t)))

		out = append(out, RewardRow{
			UserID:   f.UserID,
			Month:    f.Month,
			Tier:     t,
			Cashback: cashback,
			Yield:    yield,
			Total:    cashback.Add(yield),
		})
	}
	return out, nil
}
