package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSpendForBucketing(t *testing.T) {
	fact := UserMonthFact{
		UserID: "u1",
		Month:  Month{Year: 2025, Month: time.January},
		Categories: map[Family]CategoryTotals{
			FamilyCard:           {TxCount: 2, ValueSum: decimal.NewFromInt(40)},
			FamilyInvestmentBuy:  {TxCount: 1, ValueSum: decimal.NewFromInt(100)},
			FamilyInvestmentSell: {TxCount: 1, ValueSum: decimal.NewFromInt(25)},
		},
	}

	assert.True(t, fact.SpendForBucketing(false).Equal(decimal.NewFromInt(40)))
	assert.True(t, fact.SpendForBucketing(true).Equal(decimal.NewFromInt(165)))
}

func TestTotals_MissingFamilyIsZero(t *testing.T) {
	var fact UserMonthFact
	totals := fact.Totals(FamilyFiatDeposit)
	assert.Zero(t, totals.TxCount)
	assert.True(t, totals.ValueSum.IsZero())
}
