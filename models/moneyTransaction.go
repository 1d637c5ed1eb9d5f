package models

import (
	"time"

	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
)

// MoneyTransaction is a cash/bank receipt from a party or a cash/bank payment to a party.
type MoneyTransaction struct {
	ID                  int                 `gorm:"primary_key" json:"id"`
	BusinessId          string              `gorm:"index;not null" json:"business_id"`
	PartyRef            PartyRef            `gorm:"embedded" json:"party"`
	DocumentKind        DocumentKind        `gorm:"column:kind;size:20;not null;index" json:"kind"`
	TransactionNumber   string              `gorm:"size:255" json:"transaction_number"`
	Amount              decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"amount"`
	TransactionDateTime time.Time           `gorm:"index" json:"transaction_date_time"`
	IsDeleted           bool                `gorm:"index;not null;default:false" json:"is_deleted"`
	CreatedAt           time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *MoneyTransaction) Kind() DocumentKind { return m.DocumentKind }
func (m *MoneyTransaction) DocumentId() int    { return m.ID }
func (m *MoneyTransaction) Party() PartyRef    { return m.PartyRef }
func (m *MoneyTransaction) Deleted() bool      { return m.IsDeleted }

// BalanceContribution: a payment to a customer raises what they owe us, a receipt
// from them lowers it. On the supplier side both a payment and a receipt lower the balance.
func (m *MoneyTransaction) BalanceContribution(role PartyRole) decimal.Decimal {
	amount := utils.SafeDecimal(m.Amount)
	switch role {
	case PartyRoleCustomer:
		if m.DocumentKind.IsPayment() {
			return amount
		}
		if m.DocumentKind.IsReceipt() {
			return amount.Neg()
		}
	case PartyRoleSupplier:
		if m.DocumentKind.IsMoneyTransaction() {
			return amount.Neg()
		}
	}
	return decimal.Zero
}
