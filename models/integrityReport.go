package models

import "github.com/shopspring/decimal"

type IntegrityIssueType string

const (
	IntegrityIssueUnbalanced       IntegrityIssueType = "unbalanced"
	IntegrityIssueDuplicatePosting IntegrityIssueType = "duplicate_posting"
	IntegrityIssueMissingReference IntegrityIssueType = "missing_reference"
	IntegrityIssueAccountMismatch  IntegrityIssueType = "account_mismatch"
	IntegrityIssueUnknownAccount   IntegrityIssueType = "unknown_account"
	IntegrityIssueCheckError       IntegrityIssueType = "check_error"
)

type Severity string

const (
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

type IntegrityIssue struct {
	Type          IntegrityIssueType `json:"type"`
	Severity      Severity           `json:"severity"`
	BusinessId    string             `json:"business_id,omitempty"`
	ReferenceType DocumentKind       `json:"reference_type,omitempty"`
	ReferenceId   int                `json:"reference_id,omitempty"`
	AccountCode   string             `json:"account_code,omitempty"`
	JournalIds    []int              `json:"journal_ids,omitempty"`
	Expected      decimal.Decimal    `json:"expected"`
	Actual        decimal.Decimal    `json:"actual"`
	Difference    decimal.Decimal    `json:"difference"`
	Message       string             `json:"message"`
}

type IntegrityReport struct {
	CorrelationId string            `json:"correlation_id"`
	Valid         bool              `json:"valid"`
	TotalDebit    decimal.Decimal   `json:"total_debit"`
	TotalCredit   decimal.Decimal   `json:"total_credit"`
	EntriesCount  int               `json:"entries_count"`
	Issues        []*IntegrityIssue `json:"issues"`
}

func (r *IntegrityReport) CountByType(t IntegrityIssueType) int {
	n := 0
	for _, i := range r.Issues {
		if i.Type == t {
			n++
		}
	}
	return n
}
