package models

import "github.com/shopspring/decimal"

// Party is the role-agnostic read model the balance rebuild walks over.
type Party struct {
	BusinessId     string          `json:"business_id"`
	Ref            PartyRef        `json:"ref"`
	Name           string          `json:"name"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}
