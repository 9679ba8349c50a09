package ledger

import (
	"fmt"
	"time"

	"github.com/segwise-dev/segwise/internal/model"
)

// CheckCurrency returns a load error when any row is outside the single
// reporting currency. Rows are never converted.
func CheckCurrency(txns []model.Transaction, currency string) error {
	for _, tx := range txns {
		if tx.Currency != currency {
			return fmt.Errorf("ledger row %d: unsupported currency %q (reporting currency is %q)", tx.Seq+1, tx.Currency, currency)
		}
	}
	return nil
}

// QualityReport counts non-fatal data-quality findings. These are surfaced
// in the run diagnostics and never interrupt processing.
type QualityReport struct {
	DuplicateRows  int // exact payload duplicates after the first occurrence
	OutOfOrderRows int // rows earlier than a prior row for the same user
}

type txKey struct {
	userID       string
	timestamp    int64
	activityType string
	side         string
	amount       string
	status       model.TxStatus
}

func keyOf(tx model.Transaction) txKey {
	return txKey{
		userID:       tx.UserID,
		timestamp:    tx.Timestamp.UnixNano(),
		activityType: tx.ActivityType,
		side:         tx.Side,
		amount:       tx.Amount.String(),
		status:       tx.Status,
	}
}

// Quality scans the ledger in ingestion order for duplicate and out-of-order
// rows.
func Quality(txns []model.Transaction) QualityReport {
	var rep QualityReport
	seen := make(map[txKey]bool, len(txns))
	latest := make(map[string]time.Time)

	for _, tx := range txns {
		k := keyOf(tx)
		if seen[k] {
			rep.DuplicateRows++
		}
		seen[k] = true

		if last, ok := latest[tx.UserID]; ok && tx.Timestamp.Before(last) {
			rep.OutOfOrderRows++
		} else {
			latest[tx.UserID] = tx.Timestamp
		}
	}
	return rep
}

// Dedupe removes exact payload duplicates, keeping the first occurrence.
// Returns the filtered ledger and the number of rows dropped.
func Dedupe(txns []model.Transaction) ([]model.Transaction, int) {
	seen := make(map[txKey]bool, len(txns))
	out := make([]model.Transaction, 0, len(txns))
	dropped := 0
	for _, tx := range txns {
		k := keyOf(tx)
		if seen[k] {
			dropped++
			continue
		}
		seen[k] = true
		out = append(out, tx)
	}
	return out, dropped
}
