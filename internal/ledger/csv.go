package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segwise-dev/segwise/internal/model"
)

// Header is the canonical CSV header for the ledger.
const Header = "user_id,timestamp,activity_type,side,amount,status,currency"

var requiredColumns = []string{
	"user_id", "timestamp", "activity_type", "side", "amount", "status", "currency",
}

// Accepted timestamp layouts, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReadTransactions reads all ledger rows from a CSV reader. The header row
// is validated: a missing required column is a load error. Columns may
// appear in any order; unknown columns are ignored.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("ledger missing required column %q", name)
		}
	}

	var txns []model.Transaction
	seq := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ledger row %d: %w", seq+2, err)
		}
		seq++
		txn, err := unmarshalTransaction(rec, cols, seq)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", seq+1, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func unmarshalTransaction(rec []string, cols map[string]int, seq int) (model.Transaction, error) {
	ts, err := parseTimestamp(rec[cols["timestamp"]])
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := decimal.NewFromString(rec[cols["amount"]])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[cols["amount"]], err)
	}

	return model.Transaction{
		UserID:       rec[cols["user_id"]],
		Timestamp:    ts,
		ActivityType: rec[cols["activity_type"]],
		Side:         rec[cols["side"]],
		Amount:       amount.Abs(),
		Status:       model.TxStatus(rec[cols["status"]]),
		Currency:     rec[cols["currency"]],
		Seq:          seq,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: unrecognized format", s)
}

// LoadFile reads a ledger CSV from disk.
func LoadFile(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return txns, nil
}
