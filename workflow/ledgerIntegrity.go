package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/mmdatafocus/pos_ledger/config"
	"github.com/mmdatafocus/pos_ledger/models"
	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type LedgerStore interface {
	ListLedgerEntries(ctx context.Context) ([]*models.LedgerEntry, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	ExistingDocumentIds(ctx context.Context, businessId string, kind models.DocumentKind, ids []int) (map[int]bool, error)
}

type ValidateOptions struct {
	// BusinessId limits validation to one tenant. Empty means every tenant.
	BusinessId string
}

// LedgerIntegrityValidator checks the double-entry invariants of the posted ledger.
// It never writes.
type LedgerIntegrityValidator struct {
	store     LedgerStore
	tolerance decimal.Decimal
	logger    *logrus.Logger
}

func NewLedgerIntegrityValidator(store LedgerStore, tolerance decimal.Decimal, logger *logrus.Logger) *LedgerIntegrityValidator {
	if tolerance.IsNegative() {
		tolerance = decimal.Zero
	}
	if logger == nil {
		logger = config.GetLogger()
	}
	return &LedgerIntegrityValidator{store: store, tolerance: tolerance, logger: logger}
}

// groups ledger lines by tenant and source document
type referenceKey struct {
	businessId string
	kind       models.DocumentKind
	id         int
}

type accountKey struct {
	businessId string
	code       string
}

type accountSums struct {
	debit  decimal.Decimal
	credit decimal.Decimal
}

// Validate runs every check and returns the issues in a stable order: balance first,
// then duplicates, missing references and accounts.
func (v *LedgerIntegrityValidator) Validate(ctx context.Context, opts ValidateOptions) *models.IntegrityReport {
	cid, ok := utils.GetCorrelationIdFromContext(ctx)
	if !ok || cid == "" {
		cid = uuid.NewString()
		ctx = utils.SetCorrelationIdInContext(ctx, cid)
	}
	ctx = tenantScope(ctx, opts.BusinessId)
	ctx, span := tracer.Start(ctx, "ledger.integrity", trace.WithAttributes(
		attribute.String("business_id", opts.BusinessId),
	))
	defer span.End()

	report := &models.IntegrityReport{
		CorrelationId: cid,
		TotalDebit:    decimal.Zero,
		TotalCredit:   decimal.Zero,
	}

	entries, err := v.store.ListLedgerEntries(ctx)
	if err != nil {
		config.LogError(v.logger, "ledgerIntegrity.go", "Validate", "Listing ledger entries", cid, err)
		report.Issues = append(report.Issues, &models.IntegrityIssue{
			Type:     models.IntegrityIssueCheckError,
			Severity: models.SeverityCritical,
			Message:  (&utils.FatalEnumerationError{What: "ledger entries", Err: err}).Error(),
		})
		return v.finish(report, span)
	}
	report.EntriesCount = len(entries)

	v.checkBalance(entries, report)
	v.checkDuplicates(entries, report)
	v.checkReferences(ctx, entries, report)
	v.checkAccounts(ctx, entries, report)

	return v.finish(report, span)
}

func (v *LedgerIntegrityValidator) finish(report *models.IntegrityReport, span trace.Span) *models.IntegrityReport {
	report.Valid = len(report.Issues) == 0
	span.SetAttributes(
		attribute.Bool("valid", report.Valid),
		attribute.Int("issues", len(report.Issues)),
	)
	v.logger.WithFields(logrus.Fields{
		"field":          "LedgerIntegrity",
		"correlation_id": report.CorrelationId,
		"entries":        report.EntriesCount,
		"issues":         len(report.Issues),
		"valid":          report.Valid,
	}).Info("ledger integrity validation completed")
	return report
}

// checkBalance totals the whole scope and reports each business whose own debits and
// credits disagree, so one tenant's surplus cannot hide another's deficit.
func (v *LedgerIntegrityValidator) checkBalance(entries []*models.LedgerEntry, report *models.IntegrityReport) {
	debit, credit := decimal.Zero, decimal.Zero
	perBusiness := map[string]*accountSums{}
	for _, e := range entries {
		debit = debit.Add(e.DebitAmount)
		credit = credit.Add(e.CreditAmount)
		s := perBusiness[e.BusinessId]
		if s == nil {
			s = &accountSums{debit: decimal.Zero, credit: decimal.Zero}
			perBusiness[e.BusinessId] = s
		}
		s.debit = s.debit.Add(e.DebitAmount)
		s.credit = s.credit.Add(e.CreditAmount)
	}
	report.TotalDebit = utils.Round2(debit)
	report.TotalCredit = utils.Round2(credit)

	businesses := make([]string, 0, len(perBusiness))
	for b := range perBusiness {
		businesses = append(businesses, b)
	}
	sort.Strings(businesses)
	for _, b := range businesses {
		d := utils.Round2(perBusiness[b].debit)
		c := utils.Round2(perBusiness[b].credit)
		if utils.WithinTolerance(d, c, v.tolerance) {
			continue
		}
		report.Issues = append(report.Issues, &models.IntegrityIssue{
			Type:       models.IntegrityIssueUnbalanced,
			Severity:   models.SeverityCritical,
			BusinessId: b,
			Expected:   d,
			Actual:     c,
			Difference: d.Sub(c),
			Message: fmt.Sprintf("ledger of business %s out of balance: debits %s, credits %s",
				b, d.StringFixed(utils.MoneyPlaces), c.StringFixed(utils.MoneyPlaces)),
		})
	}
}

// checkDuplicates flags a source document that carries more than one canonical posting.
// Only live journals count: a journal is live unless it is a reversal or has been reversed.
// A document is a duplicate when it is posted by more than one live journal, or when one
// journal holds more than one debit line or more than one credit line for it. Lines with
// JournalId 0 belong to no journal and are judged as one ungrouped posting.
func (v *LedgerIntegrityValidator) checkDuplicates(entries []*models.LedgerEntry, report *models.IntegrityReport) {
	type journalKey struct {
		businessId string
		journalId  int
	}
	type sides struct {
		debits  int
		credits int
	}
	reversed := map[journalKey]bool{}
	for _, e := range entries {
		if e.IsReversal() {
			reversed[journalKey{e.BusinessId, *e.ReversalOfJournalId}] = true
		}
	}

	live := map[referenceKey]map[int]*sides{}
	for _, e := range entries {
		if e.IsReversal() || (e.JournalId != 0 && reversed[journalKey{e.BusinessId, e.JournalId}]) {
			continue
		}
		k := referenceKey{e.BusinessId, e.ReferenceType, e.ReferenceId}
		if live[k] == nil {
			live[k] = map[int]*sides{}
		}
		sd := live[k][e.JournalId]
		if sd == nil {
			sd = &sides{}
			live[k][e.JournalId] = sd
		}
		if !e.DebitAmount.IsZero() {
			sd.debits++
		}
		if !e.CreditAmount.IsZero() {
			sd.credits++
		}
	}

	for _, k := range sortedReferenceKeys(live) {
		journals := live[k]
		repeated := false
		for _, sd := range journals {
			if sd.debits > 1 || sd.credits > 1 {
				repeated = true
			}
		}
		if len(journals) < 2 && !repeated {
			continue
		}
		ids := make([]int, 0, len(journals))
		for id := range journals {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		report.Issues = append(report.Issues, &models.IntegrityIssue{
			Type:          models.IntegrityIssueDuplicatePosting,
			Severity:      models.SeverityHigh,
			BusinessId:    k.businessId,
			ReferenceType: k.kind,
			ReferenceId:   k.id,
			JournalIds:    ids,
			Message:       fmt.Sprintf("%s %d posted more than once (journals %v)", k.kind, k.id, ids),
		})
	}
}

// checkReferences resolves every referenced document by id; there is no fuzzy matching.
func (v *LedgerIntegrityValidator) checkReferences(ctx context.Context, entries []*models.LedgerEntry, report *models.IntegrityReport) {
	type kindKey struct {
		businessId string
		kind       models.DocumentKind
	}
	wanted := map[kindKey]map[int]bool{}
	for _, e := range entries {
		k := kindKey{e.BusinessId, e.ReferenceType}
		if wanted[k] == nil {
			wanted[k] = map[int]bool{}
		}
		wanted[k][e.ReferenceId] = true
	}

	keys := make([]kindKey, 0, len(wanted))
	for k := range wanted {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].businessId != keys[j].businessId {
			return keys[i].businessId < keys[j].businessId
		}
		return keys[i].kind < keys[j].kind
	})

	for _, k := range keys {
		ids := make([]int, 0, len(wanted[k]))
		for id := range wanted[k] {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		found, err := v.store.ExistingDocumentIds(ctx, k.businessId, k.kind, ids)
		if err != nil {
			config.LogError(v.logger, "ledgerIntegrity.go", "checkReferences", "Resolving "+string(k.kind)+" references", k.businessId, err)
			report.Issues = append(report.Issues, &models.IntegrityIssue{
				Type:          models.IntegrityIssueCheckError,
				Severity:      models.SeverityHigh,
				BusinessId:    k.businessId,
				ReferenceType: k.kind,
				Message:       err.Error(),
			})
			continue
		}
		for _, id := range ids {
			if found[id] {
				continue
			}
			report.Issues = append(report.Issues, &models.IntegrityIssue{
				Type:          models.IntegrityIssueMissingReference,
				Severity:      models.SeverityHigh,
				BusinessId:    k.businessId,
				ReferenceType: k.kind,
				ReferenceId:   id,
				Message:       fmt.Sprintf("ledger entries reference %s %d which does not exist", k.kind, id),
			})
		}
	}
}

func (v *LedgerIntegrityValidator) checkAccounts(ctx context.Context, entries []*models.LedgerEntry, report *models.IntegrityReport) {
	accounts, err := v.store.ListAccounts(ctx)
	if err != nil {
		config.LogError(v.logger, "ledgerIntegrity.go", "checkAccounts", "Listing accounts", report.CorrelationId, err)
		report.Issues = append(report.Issues, &models.IntegrityIssue{
			Type:     models.IntegrityIssueCheckError,
			Severity: models.SeverityMedium,
			Message:  (&utils.FatalEnumerationError{What: "accounts", Err: err}).Error(),
		})
		return
	}

	sums := map[accountKey]*accountSums{}
	for _, e := range entries {
		k := accountKey{e.BusinessId, e.AccountCode}
		s := sums[k]
		if s == nil {
			s = &accountSums{debit: decimal.Zero, credit: decimal.Zero}
			sums[k] = s
		}
		s.debit = s.debit.Add(e.DebitAmount)
		s.credit = s.credit.Add(e.CreditAmount)
	}

	known := map[accountKey]*models.Account{}
	for _, a := range accounts {
		known[accountKey{a.BusinessId, a.Code}] = a
	}

	keys := make([]accountKey, 0, len(known)+len(sums))
	for k := range known {
		keys = append(keys, k)
	}
	for k := range sums {
		if known[k] == nil {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].businessId != keys[j].businessId {
			return keys[i].businessId < keys[j].businessId
		}
		return keys[i].code < keys[j].code
	})

	for _, k := range keys {
		account := known[k]
		s := sums[k]
		if account == nil {
			report.Issues = append(report.Issues, &models.IntegrityIssue{
				Type:        models.IntegrityIssueUnknownAccount,
				Severity:    models.SeverityMedium,
				BusinessId:  k.businessId,
				AccountCode: k.code,
				Actual:      utils.Round2(s.debit.Sub(s.credit)),
				Message:     fmt.Sprintf("ledger entries post to account %s which does not exist", k.code),
			})
			continue
		}
		ledger := decimal.Zero
		if s != nil {
			ledger = utils.Round2(account.OrientedBalance(s.debit, s.credit))
		}
		if utils.WithinTolerance(ledger, account.StoredBalance, v.tolerance) {
			continue
		}
		report.Issues = append(report.Issues, &models.IntegrityIssue{
			Type:        models.IntegrityIssueAccountMismatch,
			Severity:    models.SeverityMedium,
			BusinessId:  k.businessId,
			AccountCode: k.code,
			Expected:    ledger,
			Actual:      account.StoredBalance,
			Difference:  ledger.Sub(account.StoredBalance),
			Message: fmt.Sprintf("account %s (%s): ledger %s, stored %s", account.Code, account.Name,
				ledger.StringFixed(utils.MoneyPlaces), account.StoredBalance.StringFixed(utils.MoneyPlaces)),
		})
	}
}

func sortedReferenceKeys[V any](m map[referenceKey]V) []referenceKey {
	keys := make([]referenceKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.businessId != b.businessId {
			return a.businessId < b.businessId
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.id < b.id
	})
	return keys
}
