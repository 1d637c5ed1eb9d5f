package models

import "github.com/shopspring/decimal"

// FinancialDocument is the common view of every document kind that moves a party balance.
//
// BalanceContribution is the kind's signed weight for the given role. It already
// applies the kind's status filter but never the soft-delete flag or the party match;
// those are the caller's job.
type FinancialDocument interface {
	Kind() DocumentKind
	DocumentId() int
	Party() PartyRef
	Deleted() bool
	BalanceContribution(role PartyRole) decimal.Decimal
}

var (
	_ FinancialDocument = (*Sale)(nil)
	_ FinancialDocument = (*GoodsReturn)(nil)
	_ FinancialDocument = (*PurchaseInvoice)(nil)
	_ FinancialDocument = (*MoneyTransaction)(nil)
)
