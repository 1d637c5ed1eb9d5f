package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Supplier struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Phone          string          `gorm:"size:20" json:"phone"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_balance"`
	IsDeleted      bool            `gorm:"index;not null;default:false" json:"is_deleted"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s Supplier) AsParty() Party {
	return Party{
		BusinessId:     s.BusinessId,
		Ref:            SupplierRef(s.ID),
		Name:           s.Name,
		CurrentBalance: s.CurrentBalance,
	}
}
