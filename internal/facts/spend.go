package facts

import (
	"github.com/segwise-dev/segwise/internal/category"
	"github.com/segwise-dev/segwise/internal/model"
)

// SpendKey identifies one user-month spend accumulator.
type SpendKey struct {
	UserID string
	Month  model.Month
}

// AggregateSpend accumulates transaction count and value sum per category
// family for each user-month. Each settled transaction contributes to at
// most one family; pairs outside every family are skipped.
func AggregateSpend(txns []model.Transaction) map[SpendKey]map[model.Family]model.CategoryTotals {
	out := make(map[SpendKey]map[model.Family]model.CategoryTotals)
	for _, tx := range txns {
		fam, ok := category.ClassifyTx(tx)
		if !ok {
			continue
		}

		k := SpendKey{UserID: tx.UserID, Month: tx.Month()}
		byFam := out[k]
		if byFam == nil {
			byFam = make(map[model.Family]model.CategoryTotals)
			out[k] = byFam
		}

		totals := byFam[fam]
		totals.TxCount++
		totals.ValueSum = totals.ValueSum.Add(tx.Amount.Abs())
		byFam[fam] = totals
	}
	return out
}
