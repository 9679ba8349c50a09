package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/segwise-dev/segwise/internal/model"
	"github.com/segwise-dev/segwise/internal/segment"
)

// DistributionRow is a per-(month, segment) user count with its share of the
// month's total.
type DistributionRow struct {
	Month      model.Month
	Segment    segment.Segment
	UserCount  int
	Percentage decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Distribution derives the segment population distribution from aggregated
// rows, sorted by month ascending then user count descending.
func Distribution(rows []Row) []DistributionRow {
	totals := make(map[model.Month]int)
	for _, r := range rows {
		totals[r.Month] += r.UserCount
	}

	out := make([]DistributionRow, 0, len(rows))
	for _, r := range rows {
		if r.UserCount == 0 {
			continue
		}
		total := decimal.NewFromInt(int64(totals[r.Month]))
		pct := decimal.NewFromInt(int64(r.UserCount)).Mul(hundred).Div(total).Round(2)
		out = append(out, DistributionRow{
			Month:      r.Month,
			Segment:    r.Segment,
			UserCount:  r.UserCount,
			Percentage: pct,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month.Before(out[j].Month)
		}
		if out[i].UserCount != out[j].UserCount {
			return out[i].UserCount > out[j].UserCount
		}
		return out[i].Segment.Label() < out[j].Segment.Label()
	})
	return out
}
