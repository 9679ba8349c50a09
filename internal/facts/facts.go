// Package facts replays the settled ledger per user into the monthly fact
// table the segmentation and metrics stages consume: one row per user per
// calendar month from the user's first settled activity onward, carrying
// balances forward across months with no activity.
package facts

import (
	"fmt"
	"sort"

	"github.com/segwise-dev/segwise/internal/model"
	"github.com/segwise-dev/segwise/internal/rules"
)

// Build derives UserMonthFact rows from a ledger. Non-settled rows are
// filtered here; every settled row must already resolve against the rule
// table. Facts are ordered by user, then month.
func Build(txns []model.Transaction, table *rules.Table, clip bool) ([]model.UserMonthFact, Window, error) {
	settled := Settled(txns)
	w, ok := WindowOf(settled)
	if !ok {
		return nil, Window{}, nil
	}

	series, err := ReplayBalances(settled, table, w, clip)
	if err != nil {
		return nil, Window{}, err
	}
	spend := AggregateSpend(settled)

	users := make([]string, 0, len(series))
	for u := range series {
		users = append(users, u)
	}
	sort.Strings(users)

	var out []model.UserMonthFact
	for _, u := range users {
		s := series[u]
		for _, m := range model.MonthsBetween(s.First, s.Last) {
			bal, ok := s.Closing[m]
			if !ok {
				return nil, Window{}, fmt.Errorf("closing balance undefined for user %s month %s", u, m)
			}
			out = append(out, model.UserMonthFact{
				UserID:         u,
				Month:          m,
				ClosingBalance: bal,
				Categories:     spend[SpendKey{UserID: u, Month: m}],
				Active:         s.Active[m],
			})
		}
	}
	return out, w, nil
}
