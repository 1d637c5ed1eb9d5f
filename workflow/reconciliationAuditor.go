package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/mmdatafocus/pos_ledger/config"
	"github.com/mmdatafocus/pos_ledger/models"
	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ReconcileStore interface {
	ListSales(ctx context.Context) ([]*models.Sale, error)
	ListGoodsReturns(ctx context.Context) ([]*models.GoodsReturn, error)
	ListPurchaseInvoices(ctx context.Context) ([]*models.PurchaseInvoice, error)
	ListPurchaseOrders(ctx context.Context) ([]*models.PurchaseOrder, error)
	ListMoneyTransactions(ctx context.Context) ([]*models.MoneyTransaction, error)
	UpdateDocumentField(ctx context.Context, kind models.DocumentKind, id int, field string, value any) error
}

type ReconcileOptions struct {
	Fix bool
	// BusinessId limits the pass to one tenant. Empty means every tenant.
	BusinessId string
}

// ReconciliationAuditor compares stored document fields against what the document's own
// quantities imply. It is stateless; concurrent passes are safe.
type ReconciliationAuditor struct {
	store     ReconcileStore
	tolerance decimal.Decimal
	logger    *logrus.Logger
}

func NewReconciliationAuditor(store ReconcileStore, tolerance decimal.Decimal, logger *logrus.Logger) *ReconciliationAuditor {
	if tolerance.IsNegative() {
		tolerance = decimal.Zero
	}
	if logger == nil {
		logger = config.GetLogger()
	}
	return &ReconciliationAuditor{store: store, tolerance: tolerance, logger: logger}
}

// Reconcile always returns a report. Per-document and per-family failures become
// check_error findings; fix failures are logged and counted.
func (a *ReconciliationAuditor) Reconcile(ctx context.Context, opts ReconcileOptions) *models.ReconciliationReport {
	cid, ok := utils.GetCorrelationIdFromContext(ctx)
	if !ok || cid == "" {
		cid = uuid.NewString()
		ctx = utils.SetCorrelationIdInContext(ctx, cid)
	}
	ctx = tenantScope(ctx, opts.BusinessId)
	ctx, span := tracer.Start(ctx, "ledger.reconcile", trace.WithAttributes(
		attribute.Bool("fix", opts.Fix),
		attribute.String("business_id", opts.BusinessId),
	))
	defer span.End()

	report := &models.ReconciliationReport{CorrelationId: cid, Fix: opts.Fix}

	a.auditSales(ctx, report)
	a.auditGoodsReturns(ctx, report)
	a.auditPurchaseInvoices(ctx, report)
	a.auditPurchaseOrders(ctx, report)
	a.auditMoneyTransactions(ctx, report)

	if opts.Fix {
		a.applyFixes(ctx, report)
	}

	span.SetAttributes(
		attribute.Int("checked", report.Checked),
		attribute.Int("findings", len(report.Findings)),
		attribute.Int("applied", report.Applied),
	)
	fields := logrus.Fields{
		"field":          "Reconciliation",
		"correlation_id": cid,
		"business_id":    opts.BusinessId,
		"checked":        report.Checked,
		"findings":       len(report.Findings),
		"fix":            opts.Fix,
		"applied":        report.Applied,
		"fix_errors":     report.FixErrors,
	}
	for t, n := range report.CountByType() {
		fields[string(t)] = n
	}
	a.logger.WithFields(fields).Info("reconciliation completed")
	return report
}

func (a *ReconciliationAuditor) auditSales(ctx context.Context, report *models.ReconciliationReport) {
	rows, err := a.store.ListSales(ctx)
	if err != nil {
		a.familyFailed(ctx, report, models.DocumentKindSale, err)
		return
	}
	for _, s := range rows {
		report.Checked++
		findings, err := checkSale(s, a.tolerance)
		a.collect(report, s.Kind(), s.ID, s.BusinessId, findings, err)
	}
}

func (a *ReconciliationAuditor) auditGoodsReturns(ctx context.Context, report *models.ReconciliationReport) {
	rows, err := a.store.ListGoodsReturns(ctx)
	if err != nil {
		a.familyFailed(ctx, report, models.DocumentKindReturn, err)
		return
	}
	for _, r := range rows {
		report.Checked++
		findings, err := checkGoodsReturn(r, a.tolerance)
		a.collect(report, r.Kind(), r.ID, r.BusinessId, findings, err)
	}
}

func (a *ReconciliationAuditor) auditPurchaseInvoices(ctx context.Context, report *models.ReconciliationReport) {
	rows, err := a.store.ListPurchaseInvoices(ctx)
	if err != nil {
		a.familyFailed(ctx, report, models.DocumentKindPurchaseInvoice, err)
		return
	}
	for _, p := range rows {
		report.Checked++
		findings, err := checkPurchaseInvoice(p, a.tolerance)
		a.collect(report, p.Kind(), p.ID, p.BusinessId, findings, err)
	}
}

func (a *ReconciliationAuditor) auditPurchaseOrders(ctx context.Context, report *models.ReconciliationReport) {
	rows, err := a.store.ListPurchaseOrders(ctx)
	if err != nil {
		a.familyFailed(ctx, report, models.DocumentKindPurchaseOrder, err)
		return
	}
	for _, o := range rows {
		report.Checked++
		findings, err := checkPurchaseOrder(o)
		a.collect(report, models.DocumentKindPurchaseOrder, o.ID, o.BusinessId, findings, err)
	}
}

func (a *ReconciliationAuditor) auditMoneyTransactions(ctx context.Context, report *models.ReconciliationReport) {
	rows, err := a.store.ListMoneyTransactions(ctx)
	if err != nil {
		a.familyFailed(ctx, report, models.DocumentKindMoneyTransaction, err)
		return
	}
	for _, m := range rows {
		report.Checked++
		a.collect(report, m.Kind(), m.ID, m.BusinessId, nil, checkMoneyTransaction(m))
	}
}

func (a *ReconciliationAuditor) collect(report *models.ReconciliationReport, kind models.DocumentKind, id int, businessId string, findings []*models.ReconciliationFinding, err error) {
	if err != nil {
		report.Add(&models.ReconciliationFinding{
			Type:         models.FindingTypeCheckError,
			DocumentKind: kind,
			ReferenceId:  id,
			BusinessId:   businessId,
			Message:      err.Error(),
		})
		return
	}
	for _, f := range findings {
		report.Add(f)
	}
}

// familyFailed records one check_error for a family that could not be listed.
func (a *ReconciliationAuditor) familyFailed(ctx context.Context, report *models.ReconciliationReport, kind models.DocumentKind, err error) {
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.LogError(a.logger, "reconciliationAuditor.go", "Reconcile", "Listing "+string(kind)+" documents", cid, err)
	report.Add(&models.ReconciliationFinding{
		Type:         models.FindingTypeCheckError,
		DocumentKind: kind,
		Message:      (&utils.FatalEnumerationError{What: string(kind) + " documents", Err: err}).Error(),
	})
}

// applyFixes writes each fixable finding as a single-column update. One failed write
// never stops the others.
func (a *ReconciliationAuditor) applyFixes(ctx context.Context, report *models.ReconciliationReport) {
	for _, f := range report.Findings {
		if !f.Fixable {
			continue
		}
		if err := a.store.UpdateDocumentField(ctx, f.DocumentKind, f.ReferenceId, f.Field, f.FixValue); err != nil {
			report.FixErrors++
			config.LogError(a.logger, "reconciliationAuditor.go", "applyFixes", "Applying "+f.Field+" fix", f, err)
			continue
		}
		report.Applied++
	}
}

// tenantScope narrows the store's tenant guard to one business, or opens it to all.
func tenantScope(ctx context.Context, businessId string) context.Context {
	if businessId == "" {
		return utils.SetSkipTenantScopeInContext(ctx, true)
	}
	ctx = utils.SetBusinessIdInContext(ctx, businessId)
	ctx = utils.SetIsAdminInContext(ctx, false)
	return utils.SetSkipTenantScopeInContext(ctx, false)
}
