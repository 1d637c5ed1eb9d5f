package workflow

import (
	"fmt"

	"github.com/mmdatafocus/pos_ledger/models"
	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
)

// Identity checks over single documents. Each returns the findings for one document,
// or a *utils.CheckError when the document cannot be evaluated at all.

var saleStatusExempt = map[models.SaleStatus]bool{
	models.SaleStatusDraft:     true,
	models.SaleStatusCancelled: true,
	models.SaleStatusClosed:    true,
	models.SaleStatusReturned:  true,
}

var purchaseOrderStatusExempt = map[models.PurchaseOrderStatus]bool{
	models.PurchaseOrderStatusDraft:     true,
	models.PurchaseOrderStatusCancelled: true,
	models.PurchaseOrderStatusClosed:    true,
}

func checkSale(s *models.Sale, tol decimal.Decimal) ([]*models.ReconciliationFinding, error) {
	if err := checkParty(s.Kind(), s.ID, s.PartyRef, models.PartyRoleCustomer); err != nil {
		return nil, err
	}
	total := utils.SafeDecimal(s.Total)
	paid := utils.SafeDecimal(s.AmountPaid)
	if err := nonNegative(s.Kind(), s.ID, "total", total); err != nil {
		return nil, err
	}
	if err := nonNegative(s.Kind(), s.ID, "amount_paid", paid); err != nil {
		return nil, err
	}

	var findings []*models.ReconciliationFinding
	remaining := utils.Round2(total.Sub(paid))
	if !utils.WithinTolerance(remaining, s.RemainingBalance, tol) {
		findings = append(findings, &models.ReconciliationFinding{
			Type:         models.FindingTypeArithmetic,
			DocumentKind: s.Kind(),
			ReferenceId:  s.ID,
			BusinessId:   s.BusinessId,
			Field:        "remaining_balance",
			Expected:     remaining.StringFixed(utils.MoneyPlaces),
			Actual:       s.RemainingBalance.StringFixed(utils.MoneyPlaces),
			Message: fmt.Sprintf("sale %s: total %s - paid %s should leave %s, stored %s",
				s.InvoiceNumber, total.StringFixed(2), paid.StringFixed(2), remaining.StringFixed(2), s.RemainingBalance.StringFixed(2)),
			Fixable:  true,
			FixValue: remaining,
		})
	}

	if saleStatusExempt[s.Status] {
		return findings, nil
	}
	derived := derivePaymentState(remaining, paid, tol)
	if string(s.Status) != string(derived) {
		findings = append(findings, &models.ReconciliationFinding{
			Type:         models.FindingTypeStatus,
			DocumentKind: s.Kind(),
			ReferenceId:  s.ID,
			BusinessId:   s.BusinessId,
			Field:        "status",
			Expected:     string(derived),
			Actual:       string(s.Status),
			Message:      fmt.Sprintf("sale %s: status %s but amounts say %s", s.InvoiceNumber, s.Status, derived),
			Fixable:      true,
			FixValue:     string(derived),
		})
	}
	return findings, nil
}

func checkGoodsReturn(r *models.GoodsReturn, tol decimal.Decimal) ([]*models.ReconciliationFinding, error) {
	if !r.PartyRef.Role.IsValid() || r.PartyRef.RefId <= 0 {
		return nil, &utils.CheckError{DocumentKind: string(r.Kind()), DocumentId: r.ID, Reason: "missing party reference"}
	}
	switch r.Origin {
	case models.ReturnOriginSales, models.ReturnOriginPurchase:
	default:
		return nil, &utils.CheckError{DocumentKind: string(r.Kind()), DocumentId: r.ID, Reason: fmt.Sprintf("unknown return origin %q", r.Origin)}
	}
	total := utils.SafeDecimal(r.TotalAmount)
	fee := utils.SafeDecimal(r.RestockingFee)
	if err := nonNegative(r.Kind(), r.ID, "total_amount", total); err != nil {
		return nil, err
	}
	if err := nonNegative(r.Kind(), r.ID, "restocking_fee", fee); err != nil {
		return nil, err
	}

	net := utils.Round2(total.Sub(fee))
	stored := utils.SafeDecimal(r.NetRefundAmount)
	if utils.WithinTolerance(net, stored, tol) {
		return nil, nil
	}
	return []*models.ReconciliationFinding{{
		Type:         models.FindingTypeArithmetic,
		DocumentKind: r.Kind(),
		ReferenceId:  r.ID,
		BusinessId:   r.BusinessId,
		Field:        "net_refund_amount",
		Expected:     net.StringFixed(utils.MoneyPlaces),
		Actual:       stored.StringFixed(utils.MoneyPlaces),
		Message: fmt.Sprintf("return %s: total %s - restocking fee %s should refund %s, stored %s",
			r.ReferenceNumber, total.StringFixed(2), fee.StringFixed(2), net.StringFixed(2), stored.StringFixed(2)),
		Fixable:  true,
		FixValue: net,
	}}, nil
}

func checkPurchaseInvoice(p *models.PurchaseInvoice, tol decimal.Decimal) ([]*models.ReconciliationFinding, error) {
	if err := checkParty(p.Kind(), p.ID, p.PartyRef, models.PartyRoleSupplier); err != nil {
		return nil, err
	}
	for _, item := range p.Items {
		if err := nonNegative(p.Kind(), p.ID, fmt.Sprintf("item %d qty", item.ID), utils.SafeDecimal(item.Qty)); err != nil {
			return nil, err
		}
		if err := nonNegative(p.Kind(), p.ID, fmt.Sprintf("item %d unit_cost", item.ID), utils.SafeDecimal(item.UnitCost)); err != nil {
			return nil, err
		}
	}
	total := utils.SafeDecimal(p.Total)
	paid := utils.SafeDecimal(p.AmountPaid)
	if err := nonNegative(p.Kind(), p.ID, "total", total); err != nil {
		return nil, err
	}
	if err := nonNegative(p.Kind(), p.ID, "amount_paid", paid); err != nil {
		return nil, err
	}

	var findings []*models.ReconciliationFinding
	expectedTotal := total
	// A header-only invoice has nothing to sum; its stored total stands.
	if len(p.Items) > 0 {
		expectedTotal = utils.Round2(p.ItemsTotal())
		if !utils.WithinTolerance(expectedTotal, total, tol) {
			findings = append(findings, &models.ReconciliationFinding{
				Type:         models.FindingTypeArithmetic,
				DocumentKind: p.Kind(),
				ReferenceId:  p.ID,
				BusinessId:   p.BusinessId,
				Field:        "total",
				Expected:     expectedTotal.StringFixed(utils.MoneyPlaces),
				Actual:       total.StringFixed(utils.MoneyPlaces),
				Message: fmt.Sprintf("purchase invoice %s: lines - discount + tax = %s, stored total %s",
					p.InvoiceNumber, expectedTotal.StringFixed(2), total.StringFixed(2)),
				Fixable:  true,
				FixValue: expectedTotal,
			})
		}
	}

	if p.Status == models.PurchaseInvoiceStatusDraft || p.Status == models.PurchaseInvoiceStatusCancelled {
		return findings, nil
	}
	derived := derivePaymentState(utils.Round2(expectedTotal.Sub(paid)), paid, tol)
	if p.PaymentStatus != derived {
		findings = append(findings, &models.ReconciliationFinding{
			Type:         models.FindingTypeStatus,
			DocumentKind: p.Kind(),
			ReferenceId:  p.ID,
			BusinessId:   p.BusinessId,
			Field:        "payment_status",
			Expected:     string(derived),
			Actual:       string(p.PaymentStatus),
			Message:      fmt.Sprintf("purchase invoice %s: payment status %s but amounts say %s", p.InvoiceNumber, p.PaymentStatus, derived),
			Fixable:      true,
			FixValue:     string(derived),
		})
	}
	return findings, nil
}

func checkPurchaseOrder(o *models.PurchaseOrder) ([]*models.ReconciliationFinding, error) {
	for _, item := range o.Items {
		if err := nonNegative(models.DocumentKindPurchaseOrder, o.ID, fmt.Sprintf("item %d ordered_qty", item.ID), utils.SafeDecimal(item.OrderedQty)); err != nil {
			return nil, err
		}
		if err := nonNegative(models.DocumentKindPurchaseOrder, o.ID, fmt.Sprintf("item %d received_qty", item.ID), utils.SafeDecimal(item.ReceivedQty)); err != nil {
			return nil, err
		}
	}
	if purchaseOrderStatusExempt[o.Status] || len(o.Items) == 0 {
		return nil, nil
	}
	derived := deriveReceivingState(o.Items)
	if o.Status == derived {
		return nil, nil
	}
	return []*models.ReconciliationFinding{{
		Type:         models.FindingTypeStatus,
		DocumentKind: models.DocumentKindPurchaseOrder,
		ReferenceId:  o.ID,
		BusinessId:   o.BusinessId,
		Field:        "status",
		Expected:     string(derived),
		Actual:       string(o.Status),
		Message:      fmt.Sprintf("purchase order %s: status %s but received quantities say %s", o.OrderNumber, o.Status, derived),
		Fixable:      true,
		FixValue:     string(derived),
	}}, nil
}

// checkMoneyTransaction has no identity to verify; it only rejects malformed rows.
func checkMoneyTransaction(m *models.MoneyTransaction) error {
	if !m.DocumentKind.IsMoneyTransaction() {
		return &utils.CheckError{DocumentKind: string(m.DocumentKind), DocumentId: m.ID, Reason: "not a money transaction kind"}
	}
	if !m.PartyRef.Role.IsValid() || m.PartyRef.RefId <= 0 {
		return &utils.CheckError{DocumentKind: string(m.DocumentKind), DocumentId: m.ID, Reason: "missing party reference"}
	}
	return nonNegative(m.DocumentKind, m.ID, "amount", utils.SafeDecimal(m.Amount))
}

// derivePaymentState: settled when nothing meaningful remains, partial once anything
// meaningful was paid, pending otherwise. A zero-total document is settled.
func derivePaymentState(remaining, paid, tol decimal.Decimal) models.PaymentStatus {
	switch {
	case remaining.LessThanOrEqual(tol):
		return models.PaymentStatusPaid
	case paid.GreaterThan(tol):
		return models.PaymentStatusPartial
	default:
		return models.PaymentStatusPending
	}
}

func deriveReceivingState(items []models.PurchaseOrderItem) models.PurchaseOrderStatus {
	anyReceived := false
	allReceived := true
	for _, item := range items {
		received := utils.SafeDecimal(item.ReceivedQty)
		if received.IsPositive() {
			anyReceived = true
		}
		if received.LessThan(utils.SafeDecimal(item.OrderedQty)) {
			allReceived = false
		}
	}
	switch {
	case !anyReceived:
		return models.PurchaseOrderStatusConfirmed
	case allReceived:
		return models.PurchaseOrderStatusFullyReceived
	default:
		return models.PurchaseOrderStatusPartiallyReceived
	}
}

func checkParty(kind models.DocumentKind, id int, ref models.PartyRef, want models.PartyRole) error {
	if ref.Role != want || ref.RefId <= 0 {
		return &utils.CheckError{DocumentKind: string(kind), DocumentId: id, Reason: fmt.Sprintf("party %q is not a %s", ref.String(), want)}
	}
	return nil
}

func nonNegative(kind models.DocumentKind, id int, field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return &utils.CheckError{DocumentKind: string(kind), DocumentId: id, Reason: fmt.Sprintf("negative %s %s", field, v.String())}
	}
	return nil
}
