// Package segment maps (closing balance, monthly spend) pairs onto a fixed
// 7x7 grid of named segments. Boundaries are set at design time; every real
// value maps to exactly one bucket.
package segment

import "github.com/shopspring/decimal"

// NumBuckets is the bucket count on each axis.
const NumBuckets = 7

// Upper bounds are right-exclusive; the last bucket on each axis is
// open-ended. Negative values land in the lowest bucket.
var (
	balanceUppers = boundaries(10, 100, 500, 1000, 3000, 10000)
	spendUppers   = boundaries(1, 10, 100, 300, 500, 1000)

	balanceLabels = [NumBuckets]string{"<10", "<100", "<500", "<1k", "<3k", "<10k", ">10k"}
	spendLabels   = [NumBuckets]string{"<1", "<10", "<100", "<300", "<500", "<1k", ">1k"}
)

func boundaries(vals ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func bucket(v decimal.Decimal, uppers []decimal.Decimal) int {
	for i, upper := range uppers {
		if v.LessThan(upper) {
			return i
		}
	}
	return len(uppers)
}

// BalanceBucket returns the balance bucket index in [0, NumBuckets).
func BalanceBucket(balance decimal.Decimal) int {
	return bucket(balance, balanceUppers)
}

// SpendBucket returns the spend bucket index in [0, NumBuckets).
func SpendBucket(spend decimal.Decimal) int {
	return bucket(spend, spendUppers)
}

// BalanceLabel returns the label for a balance bucket index, e.g. "B:<100".
func BalanceLabel(i int) string { return "B:" + balanceLabels[i] }

// SpendLabel returns the label for a spend bucket index, e.g. "S:<10".
func SpendLabel(i int) string { return "S:" + spendLabels[i] }

// Segment is a (balance bucket, spend bucket) pair. It is a label computed
// on demand from a fact, not a stored entity.
type Segment struct {
	Balance int
	Spend   int
}

// Assign maps a closing balance and bucketing spend to a segment.
func Assign(balance, spend decimal.Decimal) Segment {
	return Segment{Balance: BalanceBucket(balance), Spend: SpendBucket(spend)}
}

// Label returns the combined segment label, e.g. "B:<500_S:<10".
func (s Segment) Label() string {
	return BalanceLabel(s.Balance) + "_" + SpendLabel(s.Spend)
}

// All returns the 49 segments in balance-major order.
func All() []Segment {
	out := make([]Segment, 0, NumBuckets*NumBuckets)
	for b := 0; b < NumBuckets; b++ {
		for sp := 0; sp < NumBuckets; sp++ {
			out = append(out, Segment{Balance: b, Spend: sp})
		}
	}
	return out
}
