package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one posted debit or credit line. Lines sharing a JournalId form one
// posting; a reversal posting names the journal it compensates in ReversalOfJournalId.
type LedgerEntry struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	BusinessId          string          `gorm:"index;not null" json:"business_id"`
	JournalId           int             `gorm:"index;not null" json:"journal_id"`
	AccountCode         string          `gorm:"size:50;index;not null" json:"account_code"`
	DebitAmount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"debit_amount"`
	CreditAmount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_amount"`
	ReferenceType       DocumentKind    `gorm:"size:20;index;not null" json:"reference_type"`
	ReferenceId         int             `gorm:"index;not null" json:"reference_id"`
	ReversalOfJournalId *int            `gorm:"index" json:"reversal_of_journal_id"`
	Timestamp           time.Time       `gorm:"index;not null" json:"timestamp"`
}

func (e *LedgerEntry) IsReversal() bool {
	return e.ReversalOfJournalId != nil && *e.ReversalOfJournalId != 0
}
