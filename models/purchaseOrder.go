package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder never moves a balance; only its receiving status is audited.
type PurchaseOrder struct {
	ID          int                 `gorm:"primary_key" json:"id"`
	BusinessId  string              `gorm:"index;not null" json:"business_id"`
	PartyRef    PartyRef            `gorm:"embedded" json:"party"`
	OrderNumber string              `gorm:"size:255" json:"order_number"`
	Items       []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderId" json:"items"`
	Status      PurchaseOrderStatus `gorm:"size:20;not null" json:"status"`
	IsDeleted   bool                `gorm:"index;not null;default:false" json:"is_deleted"`
	CreatedAt   time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID              int                 `gorm:"primary_key" json:"id"`
	PurchaseOrderId int                 `gorm:"index;not null" json:"purchase_order_id"`
	ProductName     string              `gorm:"size:255" json:"product_name"`
	OrderedQty      decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"ordered_qty"`
	ReceivedQty     decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"received_qty"`
}
