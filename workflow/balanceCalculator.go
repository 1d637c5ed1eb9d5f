package workflow

import (
	"context"

	"github.com/mmdatafocus/pos_ledger/models"
	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
)

// DocumentSource yields a party's non-deleted financial documents.
type DocumentSource interface {
	ListPartyDocuments(ctx context.Context, businessId string, ref models.PartyRef) ([]models.FinancialDocument, error)
}

// BalanceCalculator derives a party's running balance from its full document history.
// It is the single source of truth for both the rebuild and ad-hoc recomputes.
type BalanceCalculator struct {
	docs DocumentSource
}

func NewBalanceCalculator(docs DocumentSource) *BalanceCalculator {
	return &BalanceCalculator{docs: docs}
}

func (c *BalanceCalculator) ComputeBalance(ctx context.Context, businessId string, ref models.PartyRef) (decimal.Decimal, error) {
	docs, err := c.docs.ListPartyDocuments(ctx, businessId, ref)
	if err != nil {
		return decimal.Zero, utils.NewTransientStoreError("load documents of "+ref.String(), err)
	}
	return FoldBalance(ref, docs), nil
}

// FoldBalance sums the signed contribution of every document that belongs to ref and
// is not soft-deleted. Rounding happens once, after the fold.
func FoldBalance(ref models.PartyRef, docs []models.FinancialDocument) decimal.Decimal {
	sum := decimal.Zero
	for _, doc := range docs {
		if doc == nil || doc.Deleted() || doc.Party() != ref {
			continue
		}
		sum = sum.Add(doc.BalanceContribution(ref.Role))
	}
	return utils.Round2(sum)
}
