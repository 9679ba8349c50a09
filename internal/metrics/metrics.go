// Package metrics aggregates the per-user-month fact table into one metric
// row per (month, segment) group. Every category family gets the same three
// derived numbers from one shared routine, so adding a family cannot drift
// the metric set.
package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/segwise-dev/segwise/internal/model"
	"github.com/segwise-dev/segwise/internal/segment"
)

// FamilyMetrics is the uniform derived triple for one category family.
type FamilyMetrics struct {
	TxCount    int
	AvgPerTx   decimal.Decimal // value sum / tx count, zero when no transactions
	AvgPerUser decimal.Decimal // value sum / group user count
}

// Row is one (month, segment) group in the output table.
type Row struct {
	Month      model.Month
	Segment    segment.Segment
	UserCount  int
	AvgBalance decimal.Decimal
	Families   map[model.Family]FamilyMetrics
}

// Options controls aggregation behavior.
type Options struct {
	// IncludeInvestmentInSpend folds crypto-investment buy+sell volume into
	// the spend figure used for bucketing.
	IncludeInvestmentInSpend bool
	// DenseGrid emits a zero row for every empty segment of every observed
	// month instead of omitting them.
	DenseGrid bool
}

type groupKey struct {
	month model.Month
	seg   segment.Segment
}

type group struct {
	users      int
	balanceSum decimal.Decimal
	txCounts   map[model.Family]int
	valueSums  map[model.Family]decimal.Decimal
}

// Aggregate groups facts by (month, segment) and computes the full metric
// vector per group. The result is a pure function of the fact set, ordered
// by month, then balance bucket, then spend bucket.
func Aggregate(facts []model.UserMonthFact, opts Options) []Row {
	groups := make(map[groupKey]*group)
	months := make(map[model.Month]bool)

	for _, f := range facts {
		seg := segment.Assign(f.ClosingBalance, f.SpendForBucketing(opts.IncludeInvestmentInSpend))
		k := groupKey{month: f.Month, seg: seg}
		months[f.Month] = true

		g := groups[k]
		if g == nil {
			g = &group{
				txCounts:  make(map[model.Family]int),
				valueSums: make(map[model.Family]decimal.Decimal),
			}
			groups[k] = g
		}

		g.users++
		g.balanceSum = g.balanceSum.Add(f.ClosingBalance)
		for fam, totals := range f.Categories {
			g.txCounts[fam] += totals.TxCount
			g.valueSums[fam] = g.valueSums[fam].Add(totals.ValueSum)
		}
	}

	keys := make([]groupKey, 0, len(groups))
	if opts.DenseGrid {
		for m := range months {
			for _, seg := range segment.All() {
				keys = append(keys, groupKey{month: m, seg: seg})
			}
		}
	} else {
		for k := range groups {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month.Before(keys[j].month)
		}
		if keys[i].seg.Balance != keys[j].seg.Balance {
			return keys[i].seg.Balance < keys[j].seg.Balance
		}
		return keys[i].seg.Spend < keys[j].seg.Spend
	})

	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, deriveRow(k, groups[k]))
	}
	return rows
}

func deriveRow(k groupKey, g *group) Row {
	row := Row{
		Month:    k.month,
		Segment:  k.seg,
		Families: make(map[model.Family]FamilyMetrics, len(model.Families())),
	}
	if g == nil {
		for _, fam := range model.Families() {
			row.Families[fam] = FamilyMetrics{}
		}
		return row
	}

	row.UserCount = g.users
	userCount := decimal.NewFromInt(int64(g.users))
	row.AvgBalance = g.balanceSum.Div(userCount)

	for _, fam := range model.Families() {
		row.Families[fam] = deriveFamily(g.txCounts[fam], g.valueSums[fam], userCount)
	}
	return row
}

// deriveFamily computes the shared metric triple for one family.
func deriveFamily(txCount int, valueSum, userCount decimal.Decimal) FamilyMetrics {
	m := FamilyMetrics{TxCount: txCount}
	if txCount > 0 {
		m.AvgPerTx = valueSum.Div(decimal.NewFromInt(int64(txCount)))
	}
	m.AvgPerUser = valueSum.Div(userCount)
	return m
}
