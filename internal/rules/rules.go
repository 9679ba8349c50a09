package rules

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/segwise-dev/segwise/internal/model"
)

// Effect is the resolved balance effect of an (activity_type, side) pair.
type Effect string

const (
	EffectCredit  Effect = "credit"
	EffectDebit   Effect = "debit"
	EffectIgnored Effect = "ignored"
)

// ParseEffect parses an effect cell. The legacy rule exports use "+", "-"
// and "0"; both spellings are accepted.
func ParseEffect(s string) (Effect, error) {
	switch s {
	case "credit", "+":
		return EffectCredit, nil
	case "debit", "-":
		return EffectDebit, nil
	case "ignored", "0":
		return EffectIgnored, nil
	}
	return "", fmt.Errorf("unknown effect %q", s)
}

// Sign returns the balance multiplier: +1 credit, -1 debit, 0 ignored.
func (e Effect) Sign() int {
	switch e {
	case EffectCredit:
		return 1
	case EffectDebit:
		return -1
	}
	return 0
}

// Key identifies one rule.
type Key struct {
	ActivityType string
	Side         string
}

func (k Key) String() string { return k.ActivityType + "/" + k.Side }

// Rule is one row of the rule table.
type Rule struct {
	Key    Key
	Effect Effect
}

// Table is the immutable (activity_type, side) -> effect lookup, built once
// at load time.
type Table struct {
	effects map[Key]Effect
}

// NewTable builds a Table from rules. Duplicate keys are a load error;
// last-wins is disallowed because a silently shadowed rule can misclassify
// real money movement.
func NewTable(rr []Rule) (*Table, error) {
	effects := make(map[Key]Effect, len(rr))
	for _, r := range rr {
		if _, dup := effects[r.Key]; dup {
			return nil, fmt.Errorf("duplicate rule key %s", r.Key)
		}
		effects[r.Key] = r.Effect
	}
	return &Table{effects: effects}, nil
}

// Len returns the number of rules in the table.
func (t *Table) Len() int { return len(t.effects) }

// Resolve returns the effect for an (activity_type, side) pair.
func (t *Table) Resolve(activityType, side string) (Effect, bool) {
	e, ok := t.effects[Key{ActivityType: activityType, Side: side}]
	return e, ok
}

// SignedAmount applies the resolved effect to a transaction's magnitude.
// The second return is false when the pair is not covered by the table.
func (t *Table) SignedAmount(tx model.Transaction) (decimal.Decimal, bool) {
	e, ok := t.Resolve(tx.ActivityType, tx.Side)
	if !ok {
		return decimal.Zero, false
	}
	switch e.Sign() {
	case 1:
		return tx.Amount.Abs(), true
	case -1:
		return tx.Amount.Abs().Neg(), true
	}
	return decimal.Zero, true
}

// PairCount records how many transactions reference one unresolved pair.
type PairCount struct {
	Key   Key
	Count int
}

// UnresolvedError reports (activity_type, side) pairs present in the ledger
// but absent from the rule table.
type UnresolvedError struct {
	Pairs []PairCount // sorted by descending count, then key
	Total int         // affected transactions
}

func (e *UnresolvedError) Error() string {
	msg := fmt.Sprintf("%d transaction(s) reference %d unresolved rule pair(s):", e.Total, len(e.Pairs))
	for _, p := range e.Pairs {
		msg += fmt.Sprintf(" %s (%d)", p.Key, p.Count)
	}
	return msg
}

// Coverage checks every transaction against the table and returns an
// UnresolvedError describing the uncovered pairs, or nil when resolution is
// total over the input.
func (t *Table) Coverage(txs []model.Transaction) *UnresolvedError {
	counts := make(map[Key]int)
	total := 0
	for _, tx := range txs {
		k := Key{ActivityType: tx.ActivityType, Side: tx.Side}
		if _, ok := t.effects[k]; !ok {
			counts[k]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	pairs := make([]PairCount, 0, len(counts))
	for k, n := range counts {
		pairs = append(pairs, PairCount{Key: k, Count: n})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		return pairs[i].Key.String() < pairs[j].Key.String()
	})
	return &UnresolvedError{Pairs: pairs, Total: total}
}
