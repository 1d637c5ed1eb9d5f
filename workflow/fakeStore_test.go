package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mmdatafocus/pos_ledger/models"
	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory stand-in for models.Store. Tests drive failures and
// blocking through its exported-looking fields.
type fakeStore struct {
	mu sync.Mutex

	parties   map[models.PartyRef]*models.Party
	sales     []*models.Sale
	returns   []*models.GoodsReturn
	invoices  []*models.PurchaseInvoice
	orders    []*models.PurchaseOrder
	moneyTxns []*models.MoneyTransaction
	entries   []*models.LedgerEntry
	accounts  []*models.Account

	balanceWrites int
	fieldWrites   int

	listPartiesErr error
	docErr         map[models.PartyRef]error
	balanceErr     map[models.PartyRef]error
	familyErr      map[models.DocumentKind]error
	fieldErr       map[int]error
	entriesErr     error
	accountsErr    error
	resolveErr     map[models.DocumentKind]error

	// When gate is set, ListParties signals entered and waits for gate to close.
	gate    chan struct{}
	entered chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		parties:    map[models.PartyRef]*models.Party{},
		docErr:     map[models.PartyRef]error{},
		balanceErr: map[models.PartyRef]error{},
		familyErr:  map[models.DocumentKind]error{},
		fieldErr:   map[int]error{},
		resolveErr: map[models.DocumentKind]error{},
	}
}

func (f *fakeStore) addParty(businessId string, ref models.PartyRef, balance decimal.Decimal) {
	f.parties[ref] = &models.Party{BusinessId: businessId, Ref: ref, Name: ref.String(), CurrentBalance: balance}
}

func (f *fakeStore) balanceOf(ref models.PartyRef) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.parties[ref].CurrentBalance
}

func (f *fakeStore) ListParties(ctx context.Context, role models.PartyRole) ([]models.Party, error) {
	if f.gate != nil {
		f.entered <- struct{}{}
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listPartiesErr != nil {
		return nil, f.listPartiesErr
	}
	var out []models.Party
	for ref, p := range f.parties {
		if ref.Role == role {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.RefId < out[j].Ref.RefId })
	return out, nil
}

func (f *fakeStore) FindParty(ctx context.Context, ref models.PartyRef) (models.Party, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.parties[ref]
	if !ok {
		return models.Party{}, utils.ErrorRecordNotFound
	}
	return *p, nil
}

func (f *fakeStore) UpdatePartyBalance(ctx context.Context, businessId string, ref models.PartyRef, balance decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.balanceErr[ref]; err != nil {
		return utils.NewTransientStoreError("update "+ref.String(), err)
	}
	p, ok := f.parties[ref]
	if !ok {
		return utils.ErrorRecordNotFound
	}
	p.CurrentBalance = balance
	f.balanceWrites++
	return nil
}

func (f *fakeStore) ListPartyDocuments(ctx context.Context, businessId string, ref models.PartyRef) ([]models.FinancialDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.docErr[ref]; err != nil {
		return nil, err
	}
	var docs []models.FinancialDocument
	keep := func(d models.FinancialDocument, docBusiness string) {
		if docBusiness == businessId && d.Party() == ref && !d.Deleted() {
			docs = append(docs, d)
		}
	}
	for _, d := range f.sales {
		keep(d, d.BusinessId)
	}
	for _, d := range f.returns {
		keep(d, d.BusinessId)
	}
	for _, d := range f.invoices {
		keep(d, d.BusinessId)
	}
	for _, d := range f.moneyTxns {
		keep(d, d.BusinessId)
	}
	return docs, nil
}

func (f *fakeStore) ListSales(ctx context.Context) ([]*models.Sale, error) {
	if err := f.familyErr[models.DocumentKindSale]; err != nil {
		return nil, err
	}
	var out []*models.Sale
	for _, d := range f.sales {
		if !d.IsDeleted {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) ListGoodsReturns(ctx context.Context) ([]*models.GoodsReturn, error) {
	if err := f.familyErr[models.DocumentKindReturn]; err != nil {
		return nil, err
	}
	return f.returns, nil
}

func (f *fakeStore) ListPurchaseInvoices(ctx context.Context) ([]*models.PurchaseInvoice, error) {
	if err := f.familyErr[models.DocumentKindPurchaseInvoice]; err != nil {
		return nil, err
	}
	return f.invoices, nil
}

func (f *fakeStore) ListPurchaseOrders(ctx context.Context) ([]*models.PurchaseOrder, error) {
	if err := f.familyErr[models.DocumentKindPurchaseOrder]; err != nil {
		return nil, err
	}
	return f.orders, nil
}

func (f *fakeStore) ListMoneyTransactions(ctx context.Context) ([]*models.MoneyTransaction, error) {
	if err := f.familyErr[models.DocumentKindMoneyTransaction]; err != nil {
		return nil, err
	}
	return f.moneyTxns, nil
}

func (f *fakeStore) UpdateDocumentField(ctx context.Context, kind models.DocumentKind, id int, field string, value any) error {
	if err := f.fieldErr[id]; err != nil {
		return err
	}
	f.fieldWrites++
	switch kind {
	case models.DocumentKindSale:
		for _, s := range f.sales {
			if s.ID != id {
				continue
			}
			switch field {
			case "remaining_balance":
				s.RemainingBalance = value.(decimal.Decimal)
			case "status":
				s.Status = models.SaleStatus(value.(string))
			}
			return nil
		}
	case models.DocumentKindReturn:
		for _, r := range f.returns {
			if r.ID == id && field == "net_refund_amount" {
				r.NetRefundAmount = utils.NullDecimal(value.(decimal.Decimal))
				return nil
			}
		}
	case models.DocumentKindPurchaseInvoice:
		for _, p := range f.invoices {
			if p.ID != id {
				continue
			}
			switch field {
			case "total":
				p.Total = utils.NullDecimal(value.(decimal.Decimal))
			case "payment_status":
				p.PaymentStatus = models.PaymentStatus(value.(string))
			}
			return nil
		}
	case models.DocumentKindPurchaseOrder:
		for _, o := range f.orders {
			if o.ID == id && field == "status" {
				o.Status = models.PurchaseOrderStatus(value.(string))
				return nil
			}
		}
	}
	return fmt.Errorf("%s %d: %w", kind, id, utils.ErrorRecordNotFound)
}

func (f *fakeStore) ListLedgerEntries(ctx context.Context) ([]*models.LedgerEntry, error) {
	if f.entriesErr != nil {
		return nil, f.entriesErr
	}
	return f.entries, nil
}

func (f *fakeStore) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	if f.accountsErr != nil {
		return nil, f.accountsErr
	}
	return f.accounts, nil
}

// ExistingDocumentIds resolves against every document slice, deleted rows included.
func (f *fakeStore) ExistingDocumentIds(ctx context.Context, businessId string, kind models.DocumentKind, ids []int) (map[int]bool, error) {
	if err := f.resolveErr[kind]; err != nil {
		return nil, err
	}
	exists := map[int]bool{}
	add := func(docBusiness string, docKind models.DocumentKind, id int) {
		if docBusiness == businessId && docKind == kind {
			exists[id] = true
		}
	}
	for _, d := range f.sales {
		add(d.BusinessId, d.Kind(), d.ID)
	}
	for _, d := range f.returns {
		add(d.BusinessId, d.Kind(), d.ID)
	}
	for _, d := range f.invoices {
		add(d.BusinessId, d.Kind(), d.ID)
	}
	for _, d := range f.orders {
		add(d.BusinessId, models.DocumentKindPurchaseOrder, d.ID)
	}
	for _, d := range f.moneyTxns {
		add(d.BusinessId, d.Kind(), d.ID)
	}
	found := map[int]bool{}
	for _, id := range ids {
		if exists[id] {
			found[id] = true
		}
	}
	return found, nil
}

var errStoreDown = errors.New("connection refused")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ndec(s string) decimal.NullDecimal {
	return utils.NullDecimal(dec(s))
}
