package models

import (
	"time"

	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
)

// Sale is a POS sales invoice. Total and AmountPaid may be NULL on legacy rows.
type Sale struct {
	ID               int                 `gorm:"primary_key" json:"id"`
	BusinessId       string              `gorm:"index;not null" json:"business_id"`
	PartyRef         PartyRef            `gorm:"embedded" json:"party"`
	InvoiceNumber    string              `gorm:"size:255" json:"invoice_number"`
	Total            decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"total"`
	AmountPaid       decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"amount_paid"`
	RemainingBalance decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"remaining_balance"`
	Status           SaleStatus          `gorm:"size:20;not null" json:"status"`
	IsDeleted        bool                `gorm:"index;not null;default:false" json:"is_deleted"`
	CreatedAt        time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Sale) Kind() DocumentKind { return DocumentKindSale }
func (s *Sale) DocumentId() int    { return s.ID }
func (s *Sale) Party() PartyRef    { return s.PartyRef }
func (s *Sale) Deleted() bool      { return s.IsDeleted }

func (s *Sale) BalanceContribution(role PartyRole) decimal.Decimal {
	if role != PartyRoleCustomer {
		return decimal.Zero
	}
	return utils.SafeDecimal(s.Total)
}
