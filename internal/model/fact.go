package model

import "github.com/shopspring/decimal"

// Family is a disjoint class of transaction types carrying its own
// count/sum/average metrics.
type Family string

const (
	FamilyCard           Family = "card"
	FamilyInvestmentBuy  Family = "investment_buy"
	FamilyInvestmentSell Family = "investment_sell"
	FamilyCryptoDeposit  Family = "crypto_deposit"
	FamilyCryptoWithdraw Family = "crypto_withdraw"
	FamilyCashDeposit    Family = "cash_deposit"
	FamilyCashWithdraw   Family = "cash_withdraw"
	FamilyFiatDeposit    Family = "fiat_deposit"
	FamilyFiatWithdraw   Family = "fiat_withdraw"
)

// Families lists every category family in output column order.
func Families() []Family {
	return []Family{
		FamilyCard,
		FamilyInvestmentBuy,
		FamilyInvestmentSell,
		FamilyCryptoDeposit,
		FamilyCryptoWithdraw,
		FamilyCashDeposit,
		FamilyCashWithdraw,
		FamilyFiatDeposit,
		FamilyFiatWithdraw,
	}
}

// CategoryTotals accumulates transaction count and value for one family
// within one user-month.
type CategoryTotals struct {
	TxCount  int
	ValueSum decimal.Decimal
}

// UserMonthFact is one user's derived row for one calendar month. Rebuilt
// each run, never persisted.
type UserMonthFact struct {
	UserID         string
	Month          Month
	ClosingBalance decimal.Decimal
	Categories     map[Family]CategoryTotals
	Active         bool // at least one settled transaction this month
}

// Totals returns the accumulated totals for a family, zero if none.
func (f UserMonthFact) Totals(fam Family) CategoryTotals {
	return f.Categories[fam]
}

// CardSpend is the settled card-family value total for the month.
func (f UserMonthFact) CardSpend() decimal.Decimal {
	return f.Totals(FamilyCard).ValueSum
}

// SpendForBucketing returns the spend figure used for segment assignment:
// card spend, optionally folding in crypto-investment buy and sell volume.
func (f UserMonthFact) SpendForBucketing(includeInvestment bool) decimal.Decimal {
	spend := f.CardSpend()
	if includeInvestment {
		spend = spend.Add(f.Totals(FamilyInvestmentBuy).ValueSum)
		spend = spend.Add(f.Totals(FamilyInvestmentSell).ValueSum)
	}
	return spend
}
