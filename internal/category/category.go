// Package category classifies ledger transactions into disjoint metric
// families. The classification table is separate from the balance-effect
// rule table: a transaction the balance replay ignores can still count
// toward spend metrics.
package category

import "github.com/segwise-dev/segwise/internal/model"

// Card spend counts captured holds and direct debits only; authorizations,
// releases and refunds fall outside every family.
const (
	sideHoldCaptured = "hold_captured"
	sideDebit        = "debit"
	sideBuy          = "buy"
	sideSell         = "sell"
)

// Classify maps an (activity_type, side) pair to its category family.
// Returns false for pairs outside every family; such transactions carry no
// spend metrics. Each pair maps to at most one family.
func Classify(activityType, side string) (model.Family, bool) {
	switch activityType {
	case "card":
		if side == sideHoldCaptured || side == sideDebit {
			return model.FamilyCard, true
		}
		return "", false
	case "crypto_investment":
		switch side {
		case sideBuy:
			return model.FamilyInvestmentBuy, true
		case sideSell:
			return model.FamilyInvestmentSell, true
		}
		return "", false
	case "crypto_deposit":
		return model.FamilyCryptoDeposit, true
	case "crypto_withdraw":
		return model.FamilyCryptoWithdraw, true
	case "cash_deposit":
		return model.FamilyCashDeposit, true
	case "cash_withdraw":
		return model.FamilyCashWithdraw, true
	case "fiat_deposit":
		return model.FamilyFiatDeposit, true
	case "fiat_withdraw":
		return model.FamilyFiatWithdraw, true
	}
	return "", false
}

// ClassifyTx classifies a parsed ledger row.
func ClassifyTx(tx model.Transaction) (model.Family, bool) {
	return Classify(tx.ActivityType, tx.Side)
}
