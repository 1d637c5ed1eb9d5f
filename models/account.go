package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id"`
	Code          string          `gorm:"size:50;index;not null" json:"code"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	MainType      AccountMainType `gorm:"size:20;not null" json:"main_type"`
	StoredBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stored_balance"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrientedBalance turns raw ledger sums into the account's natural sign.
func (a Account) OrientedBalance(debit, credit decimal.Decimal) decimal.Decimal {
	if a.MainType.IsDebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}
