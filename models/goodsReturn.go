package models

import (
	"time"

	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
)

// GoodsReturn is a sales return (customer side) or purchase return (supplier side).
type GoodsReturn struct {
	ID              int                 `gorm:"primary_key" json:"id"`
	BusinessId      string              `gorm:"index;not null" json:"business_id"`
	PartyRef        PartyRef            `gorm:"embedded" json:"party"`
	Origin          ReturnOrigin        `gorm:"size:10;not null" json:"origin"`
	ReferenceNumber string              `gorm:"size:255" json:"reference_number"`
	TotalAmount     decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"total_amount"`
	RestockingFee   decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"restocking_fee"`
	NetRefundAmount decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"net_refund_amount"`
	Status          ReturnStatus        `gorm:"size:20;not null" json:"status"`
	IsDeleted       bool                `gorm:"index;not null;default:false" json:"is_deleted"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *GoodsReturn) Kind() DocumentKind { return DocumentKindReturn }
func (r *GoodsReturn) DocumentId() int    { return r.ID }
func (r *GoodsReturn) Party() PartyRef    { return r.PartyRef }
func (r *GoodsReturn) Deleted() bool      { return r.IsDeleted }

func (r *GoodsReturn) BalanceContribution(role PartyRole) decimal.Decimal {
	if !r.Status.CountsTowardBalance() {
		return decimal.Zero
	}
	switch {
	case role == PartyRoleCustomer && r.Origin == ReturnOriginSales,
		role == PartyRoleSupplier && r.Origin == ReturnOriginPurchase:
		return utils.SafeDecimal(r.NetRefundAmount).Neg()
	}
	return decimal.Zero
}
