package models

type FindingType string

const (
	FindingTypeArithmetic FindingType = "arithmetic_mismatch"
	FindingTypeStatus     FindingType = "status_mismatch"
	FindingTypeCheckError FindingType = "check_error"
)

// ReconciliationFinding is one drift between a stored field and the value derivable
// from the document itself. Field is the column a fix would narrow toward Expected.
type ReconciliationFinding struct {
	Type         FindingType  `json:"type"`
	DocumentKind DocumentKind `json:"document_kind"`
	ReferenceId  int          `json:"reference_id"`
	BusinessId   string       `json:"business_id,omitempty"`
	Field        string       `json:"field,omitempty"`
	Expected     string       `json:"expected"`
	Actual       string       `json:"actual"`
	Message      string       `json:"message"`
	Fixable      bool         `json:"fixable"`
	// FixValue is the typed value written when the finding is applied.
	FixValue any `json:"-"`
}

type ReconciliationReport struct {
	CorrelationId string                   `json:"correlation_id"`
	Fix           bool                     `json:"fix"`
	Checked       int                      `json:"checked"`
	Findings      []*ReconciliationFinding `json:"findings"`
	Applied       int                      `json:"applied"`
	FixErrors     int                      `json:"fix_errors"`
}

func (r *ReconciliationReport) Add(f *ReconciliationFinding) {
	r.Findings = append(r.Findings, f)
}

// CountByType is mostly for logging.
func (r *ReconciliationReport) CountByType() map[FindingType]int {
	out := map[FindingType]int{}
	for _, f := range r.Findings {
		out[f.Type]++
	}
	return out
}
