package facts

import "github.com/segwise-dev/segwise/internal/model"

// Window is the reporting window in calendar months, inclusive on both ends.
type Window struct {
	First model.Month
	Last  model.Month
}

// Months returns every month in the window.
func (w Window) Months() []model.Month {
	return model.MonthsBetween(w.First, w.Last)
}

// WindowOf derives the reporting window from a transaction set. Returns
// false for an empty set.
func WindowOf(txns []model.Transaction) (Window, bool) {
	if len(txns) == 0 {
		return Window{}, false
	}
	w := Window{First: txns[0].Month(), Last: txns[0].Month()}
	for _, tx := range txns[1:] {
		m := tx.Month()
		if m.Before(w.First) {
			w.First = m
		}
		if m.After(w.Last) {
			w.Last = m
		}
	}
	return w, true
}

// Settled filters a ledger to the rows that participate in balance and
// metric computation.
func Settled(txns []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, tx := range txns {
		if tx.Settled() {
			out = append(out, tx)
		}
	}
	return out
}
