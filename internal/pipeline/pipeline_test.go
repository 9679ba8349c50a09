package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segwise-dev/segwise/internal/config"
	"github.com/segwise-dev/segwise/internal/model"
	"github.com/segwise-dev/segwise/internal/rules"
)

func testTable(t *testing.T) *rules.Table {
	t.Helper()
	table, err := rules.NewTable([]rules.Rule{
		{Key: rules.Key{ActivityType: "card", Side: "hold_captured"}, Effect: rules.EffectDebit},
		{Key: rules.Key{ActivityType: "fiat_deposit", Side: "credit"}, Effect: rules.EffectCredit},
	})
	require.NoError(t, err)
	return table
}

func tx(user string, ts time.Time, activityType, side, amount string, status model.TxStatus, seq int) model.Transaction {
	d, _ := decimal.NewFromString(amount)
	return model.Transaction{
		UserID:       user,
		Timestamp:    ts,
		ActivityType: activityType,
		Side:         side,
		Amount:       d,
		Status:       status,
		Currency:     "eUSD",
		Seq:          seq,
	}
}

func TestRun_CarryForwardScenario(t *testing.T) {
	jan3 := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	jan15 := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	feb1 := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	txns := []model.Transaction{
		tx("U", jan3, "fiat_deposit", "credit", "50", model.StatusSettled, 1),
		tx("U", jan15, "card", "hold_captured", "20", model.StatusSettled, 2),
		tx("W", feb1, "fiat_deposit", "credit", "5", model.StatusSettled, 3),
	}

	res, err := Run(zap.NewNop(), txns, testTable(t), config.Default())
	require.NoError(t, err)

	require.Len(t, res.Facts, 3)
	uJan, uFeb := res.Facts[0], res.Facts[1]
	assert.True(t, uJan.ClosingBalance.Equal(decimal.NewFromInt(30)))
	assert.True(t, uFeb.ClosingBalance.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 1, uJan.Totals(model.FamilyCard).TxCount)
	assert.Equal(t, 0, uFeb.Totals(model.FamilyCard).TxCount)

	assert.Equal(t, 1, res.Diagnostics.CarriedForwardMonths)
	assert.Equal(t, 1, res.Diagnostics.CarryForwardUsers)

	require.Len(t, res.Segments, 3)
	assert.Equal(t, "U", res.Segments[0].UserID)
	assert.Equal(t, "B:<100_S:<100", res.Segments[0].Segment.Label())
}

func TestRun_UnresolvedPairAbortsAtZeroTolerance(t *testing.T) {
	jan := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	txns := []model.Transaction{
		tx("U", jan, "fiat_deposit", "credit", "50", model.StatusSettled, 1),
		tx("U", jan, "card", "refund", "5", model.StatusSettled, 2),
	}

	_, err := Run(zap.NewNop(), txns, testTable(t), config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card/refund")
}

func TestRun_UnresolvedWithinToleranceExcluded(t *testing.T) {
	jan := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	txns := []model.Transaction{
		tx("U", jan, "fiat_deposit", "credit", "50", model.StatusSettled, 1),
		tx("U", jan, "fiat_deposit", "credit", "25", model.StatusSettled, 2),
		tx("U", jan, "card", "refund", "5", model.StatusSettled, 3),
	}

	opts := config.Default()
	opts.UnresolvedTolerance = 0.5

	res, err := Run(zap.NewNop(), txns, testTable(t), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Diagnostics.UnresolvedExcluded)
	require.Len(t, res.Diagnostics.UnresolvedPairs, 1)
	assert.Equal(t, "card/refund", res.Diagnostics.UnresolvedPairs[0].Key.String())

	require.Len(t, res.Facts, 1)
	assert.True(t, res.Facts[0].ClosingBalance.Equal(decimal.NewFromInt(75)))
}

func TestRun_NonSettledRetainedButExcluded(t *testing.T) {
	jan := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	txns := []model.Transaction{
		tx("U", jan, "fiat_deposit", "credit", "50", model.StatusSettled, 1),
		tx("U", jan, "card", "hold_captured", "99", model.StatusPending, 2),
		tx("ghost", jan, "fiat_deposit", "credit", "10", model.StatusDeclined, 3),
	}

	res, err := Run(zap.NewNop(), txns, testTable(t), config.Default())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Diagnostics.NonSettledExcluded)
	assert.Equal(t, 1, res.Diagnostics.ZeroSettledUsers)
	require.Len(t, res.Facts, 1)
	assert.True(t, res.Facts[0].ClosingBalance.Equal(decimal.NewFromInt(50)))
}

func TestRun_DedupeOption(t *testing.T) {
	jan := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	dup := tx("U", jan, "fiat_deposit", "credit", "50", model.StatusSettled, 1)
	dup2 := dup
	dup2.Seq = 2

	opts := config.Default()
	opts.DedupeTransactions = true

	res, err := Run(zap.NewNop(), []model.Transaction{dup, dup2}, testTable(t), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Diagnostics.DuplicateRows)
	assert.Equal(t, 1, res.Diagnostics.DuplicatesDropped)
	require.Len(t, res.Facts, 1)
	assert.True(t, res.Facts[0].ClosingBalance.Equal(decimal.NewFromInt(50)))
}

func TestRun_UnsupportedCurrencyIsFatal(t *testing.T) {
	jan := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	bad := tx("U", jan, "fiat_deposit", "credit", "50", model.StatusSettled, 1)
	bad.Currency = "BRL"

	_, err := Run(zap.NewNop(), []model.Transaction{bad}, testTable(t), config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BRL")
}

// Sum of user counts across segments equals distinct users in the month.
func TestRun_UserCountConservation(t *testing.T) {
	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	txns := []model.Transaction{
		tx("a", jan, "fiat_deposit", "credit", "5", model.StatusSettled, 1),
		tx("b", jan, "fiat_deposit", "credit", "50", model.StatusSettled, 2),
		tx("c", jan, "fiat_deposit", "credit", "5000", model.StatusSettled, 3),
		tx("d", jan, "fiat_deposit", "credit", "20000", model.StatusSettled, 4),
	}

	res, err := Run(zap.NewNop(), txns, testTable(t), config.Default())
	require.NoError(t, err)

	total := 0
	for _, r := range res.Metrics {
		total += r.UserCount
	}
	assert.Equal(t, 4, total)
}
