package rules

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segwise-dev/segwise/internal/model"
)

func tx(activityType, side string, amount string) model.Transaction {
	d, _ := decimal.NewFromString(amount)
	return model.Transaction{
		UserID:       "u1",
		Timestamp:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		ActivityType: activityType,
		Side:         side,
		Amount:       d,
		Status:       model.StatusSettled,
		Currency:     "eUSD",
	}
}

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable([]Rule{
		{Key: Key{ActivityType: "card", Side: "hold_captured"}, Effect: EffectDebit},
		{Key: Key{ActivityType: "card", Side: "debit"}, Effect: EffectDebit},
		{Key: Key{ActivityType: "fiat_deposit", Side: "credit"}, Effect: EffectCredit},
		{Key: Key{ActivityType: "card", Side: "hold_released"}, Effect: EffectIgnored},
	})
	require.NoError(t, err)
	return table
}

func TestResolve(t *testing.T) {
	table := testTable(t)

	e, ok := table.Resolve("card", "hold_captured")
	require.True(t, ok)
	assert.Equal(t, EffectDebit, e)

	e, ok = table.Resolve("fiat_deposit", "credit")
	require.True(t, ok)
	assert.Equal(t, EffectCredit, e)

	_, ok = table.Resolve("card", "refund")
	assert.False(t, ok)
}

func TestResolve_Repeatable(t *testing.T) {
	table := testTable(t)
	first, ok := table.Resolve("card", "debit")
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := table.Resolve("card", "debit")
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestNewTable_DuplicateKey(t *testing.T) {
	_, err := NewTable([]Rule{
		{Key: Key{ActivityType: "card", Side: "debit"}, Effect: EffectDebit},
		{Key: Key{ActivityType: "card", Side: "debit"}, Effect: EffectCredit},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card/debit")
}

func TestEffectSign(t *testing.T) {
	assert.Equal(t, 1, EffectCredit.Sign())
	assert.Equal(t, -1, EffectDebit.Sign())
	assert.Equal(t, 0, EffectIgnored.Sign())
}

func TestParseEffect_LegacySpellings(t *testing.T) {
	for in, want := range map[string]Effect{
		"credit": EffectCredit, "+": EffectCredit,
		"debit": EffectDebit, "-": EffectDebit,
		"ignored": EffectIgnored, "0": EffectIgnored,
	} {
		e, err := ParseEffect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, e, in)
	}

	_, err := ParseEffect("maybe")
	assert.Error(t, err)
}

func TestSignedAmount(t *testing.T) {
	table := testTable(t)

	signed, ok := table.SignedAmount(tx("card", "debit", "20.00"))
	require.True(t, ok)
	assert.True(t, signed.Equal(decimal.NewFromInt(-20)))

	signed, ok = table.SignedAmount(tx("fiat_deposit", "credit", "50.00"))
	require.True(t, ok)
	assert.True(t, signed.Equal(decimal.NewFromInt(50)))

	signed, ok = table.SignedAmount(tx("card", "hold_released", "20.00"))
	require.True(t, ok)
	assert.True(t, signed.IsZero())

	_, ok = table.SignedAmount(tx("card", "refund", "5.00"))
	assert.False(t, ok)
}

func TestCoverage(t *testing.T) {
	table := testTable(t)

	err := table.Coverage([]model.Transaction{
		tx("card", "debit", "10"),
		tx("fiat_deposit", "credit", "50"),
	})
	assert.Nil(t, err)

	err = table.Coverage([]model.Transaction{
		tx("card", "debit", "10"),
		tx("cash_deposit", "credit", "5"),
		tx("cash_deposit", "credit", "5"),
		tx("card", "refund", "1"),
	})
	require.NotNil(t, err)
	assert.Equal(t, 3, err.Total)
	require.Len(t, err.Pairs, 2)
	assert.Equal(t, Key{ActivityType: "cash_deposit", Side: "credit"}, err.Pairs[0].Key)
	assert.Equal(t, 2, err.Pairs[0].Count)
	assert.Contains(t, err.Error(), "cash_deposit/credit (2)")
	assert.Contains(t, err.Error(), "card/refund (1)")
}

func TestReadRules(t *testing.T) {
	in := strings.Join([]string{
		Header,
		"card,hold_captured,debit",
		"fiat_deposit,credit,+",
		"card,hold_released,0",
	}, "\n")

	rr, err := ReadRules(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rr, 3)
	assert.Equal(t, EffectDebit, rr[0].Effect)
	assert.Equal(t, EffectCredit, rr[1].Effect)
	assert.Equal(t, EffectIgnored, rr[2].Effect)
}

func TestReadRules_MissingHeader(t *testing.T) {
	in := "card,hold_captured,debit\nfiat_deposit,credit,credit\n"
	_, err := ReadRules(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), Header)
}

func TestReadRules_BadEffect(t *testing.T) {
	in := Header + "\ncard,debit,sideways\n"
	_, err := ReadRules(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}
