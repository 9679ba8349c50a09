package facts

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/segwise-dev/segwise/internal/model"
	"github.com/segwise-dev/segwise/internal/rules"
)

// BalanceSeries holds one user's monthly closing balances. Closing is
// defined for every month from First through Last with no gaps: months
// without settled activity carry the prior month's snapshot forward.
type BalanceSeries struct {
	UserID  string
	First   model.Month // first month with settled activity
	Last    model.Month // end of series (window end, or last active month when clipped)
	Closing map[model.Month]decimal.Decimal
	Active  map[model.Month]bool

	balance    decimal.Decimal
	lastActive model.Month
}

// replayOrder sorts transactions for replay: by user, then timestamp, with
// ties broken by ingestion order so replay is reproducible.
func replayOrder(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// ReplayBalances replays settled transactions per user in chronological
// order, applying each resolved effect to a running balance and snapshotting
// it at every month boundary. Months without activity are filled from the
// last known snapshot, through the window end or, when clip is set, the
// user's last active month. Every transaction must resolve against the rule
// table; an uncovered pair here is a logic bug in the caller.
func ReplayBalances(txns []model.Transaction, table *rules.Table, w Window, clip bool) (map[string]*BalanceSeries, error) {
	series := make(map[string]*BalanceSeries)

	for _, tx := range replayOrder(txns) {
		signed, ok := table.SignedAmount(tx)
		if !ok {
			return nil, fmt.Errorf("unresolved pair %s/%s reached balance replay", tx.ActivityType, tx.Side)
		}

		m := tx.Month()
		s := series[tx.UserID]
		if s == nil {
			s = &BalanceSeries{
				UserID:  tx.UserID,
				First:   m,
				Closing: make(map[model.Month]decimal.Decimal),
				Active:  make(map[model.Month]bool),
			}
			series[tx.UserID] = s
		}

		s.balance = s.balance.Add(signed)
		s.Closing[m] = s.balance
		s.Active[m] = true
		s.lastActive = m
	}

	for _, s := range series {
		s.Last = w.Last
		if clip {
			s.Last = s.lastActive
		}
		carried := decimal.Zero
		for _, m := range model.MonthsBetween(s.First, s.Last) {
			if v, ok := s.Closing[m]; ok {
				carried = v
				continue
			}
			s.Closing[m] = carried
		}
	}

	return series, nil
}
