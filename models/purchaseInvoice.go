package models

import (
	"time"

	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
)

type PurchaseInvoice struct {
	ID            int                   `gorm:"primary_key" json:"id"`
	BusinessId    string                `gorm:"index;not null" json:"business_id"`
	PartyRef      PartyRef              `gorm:"embedded" json:"party"`
	InvoiceNumber string                `gorm:"size:255" json:"invoice_number"`
	Items         []PurchaseInvoiceItem `gorm:"foreignKey:PurchaseInvoiceId" json:"items"`
	Discount      decimal.NullDecimal   `gorm:"type:decimal(20,4)" json:"discount"`
	Tax           decimal.NullDecimal   `gorm:"type:decimal(20,4)" json:"tax"`
	Total         decimal.NullDecimal   `gorm:"type:decimal(20,4)" json:"total"`
	AmountPaid    decimal.NullDecimal   `gorm:"type:decimal(20,4)" json:"amount_paid"`
	Status        PurchaseInvoiceStatus `gorm:"size:20;not null" json:"status"`
	PaymentStatus PaymentStatus         `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	IsDeleted     bool                  `gorm:"index;not null;default:false" json:"is_deleted"`
	CreatedAt     time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseInvoiceItem struct {
	ID                int                 `gorm:"primary_key" json:"id"`
	PurchaseInvoiceId int                 `gorm:"index;not null" json:"purchase_invoice_id"`
	ProductName       string              `gorm:"size:255" json:"product_name"`
	Qty               decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"qty"`
	UnitCost          decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"unit_cost"`
}

func (p *PurchaseInvoice) Kind() DocumentKind { return DocumentKindPurchaseInvoice }
func (p *PurchaseInvoice) DocumentId() int    { return p.ID }
func (p *PurchaseInvoice) Party() PartyRef    { return p.PartyRef }
func (p *PurchaseInvoice) Deleted() bool      { return p.IsDeleted }

func (p *PurchaseInvoice) BalanceContribution(role PartyRole) decimal.Decimal {
	if role != PartyRoleSupplier || p.Status != PurchaseInvoiceStatusConfirmed {
		return decimal.Zero
	}
	return utils.SafeDecimal(p.Total)
}

// ItemsTotal is Σ(qty × unit cost) − discount + tax, unrounded.
func (p *PurchaseInvoice) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range p.Items {
		sum = sum.Add(utils.SafeDecimal(item.Qty).Mul(utils.SafeDecimal(item.UnitCost)))
	}
	return sum.Sub(utils.SafeDecimal(p.Discount)).Add(utils.SafeDecimal(p.Tax))
}
