package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the gorm-backed transaction store, balance cache and ledger reader.
// Every error it returns is a *utils.TransientStoreError, except unknown fix targets.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// fixableFields whitelists the columns the reconciliation fix path may touch.
var fixableFields = map[DocumentKind]map[string]bool{
	DocumentKindSale:            {"remaining_balance": true, "status": true},
	DocumentKindPurchaseInvoice: {"total": true, "payment_status": true},
	DocumentKindPurchaseOrder:   {"status": true},
	DocumentKindReturn:          {"net_refund_amount": true},
}

func (s *Store) ListParties(ctx context.Context, role PartyRole) ([]Party, error) {
	var parties []Party
	switch role {
	case PartyRoleCustomer:
		var rows []Customer
		if err := s.db.WithContext(ctx).Where("is_deleted = ?", false).Order("id").Find(&rows).Error; err != nil {
			return nil, utils.NewTransientStoreError("list customers", err)
		}
		for _, c := range rows {
			parties = append(parties, c.AsParty())
		}
	case PartyRoleSupplier:
		var rows []Supplier
		if err := s.db.WithContext(ctx).Where("is_deleted = ?", false).Order("id").Find(&rows).Error; err != nil {
			return nil, utils.NewTransientStoreError("list suppliers", err)
		}
		for _, sp := range rows {
			parties = append(parties, sp.AsParty())
		}
	default:
		return nil, fmt.Errorf("unknown party role %q", role)
	}
	return parties, nil
}

// FindParty loads one non-deleted party by reference.
func (s *Store) FindParty(ctx context.Context, ref PartyRef) (Party, error) {
	var err error
	var party Party
	switch ref.Role {
	case PartyRoleCustomer:
		var c Customer
		err = s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", ref.RefId, false).Take(&c).Error
		party = c.AsParty()
	case PartyRoleSupplier:
		var sp Supplier
		err = s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", ref.RefId, false).Take(&sp).Error
		party = sp.AsParty()
	default:
		return Party{}, fmt.Errorf("unknown party role %q", ref.Role)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Party{}, utils.ErrorRecordNotFound
	}
	if err != nil {
		return Party{}, utils.NewTransientStoreError("find "+ref.String(), err)
	}
	return party, nil
}

// ListPartyDocuments returns every non-deleted document of the kinds that can move
// the party's balance. Status filtering is left to BalanceContribution.
func (s *Store) ListPartyDocuments(ctx context.Context, businessId string, ref PartyRef) ([]FinancialDocument, error) {
	db := s.db.WithContext(ctx).
		Where("business_id = ? AND party_role = ? AND party_id = ? AND is_deleted = ?", businessId, ref.Role, ref.RefId, false).
		Session(&gorm.Session{})

	var docs []FinancialDocument
	switch ref.Role {
	case PartyRoleCustomer:
		var sales []*Sale
		if err := db.Order("id").Find(&sales).Error; err != nil {
			return nil, utils.NewTransientStoreError("list sales", err)
		}
		for _, d := range sales {
			docs = append(docs, d)
		}
	case PartyRoleSupplier:
		var invoices []*PurchaseInvoice
		if err := db.Order("id").Find(&invoices).Error; err != nil {
			return nil, utils.NewTransientStoreError("list purchase invoices", err)
		}
		for _, d := range invoices {
			docs = append(docs, d)
		}
	default:
		return nil, fmt.Errorf("unknown party role %q", ref.Role)
	}

	var returns []*GoodsReturn
	if err := db.Order("id").Find(&returns).Error; err != nil {
		return nil, utils.NewTransientStoreError("list returns", err)
	}
	for _, d := range returns {
		docs = append(docs, d)
	}

	var moneyTxns []*MoneyTransaction
	if err := db.Order("id").Find(&moneyTxns).Error; err != nil {
		return nil, utils.NewTransientStoreError("list money transactions", err)
	}
	for _, d := range moneyTxns {
		docs = append(docs, d)
	}
	return docs, nil
}

func (s *Store) UpdatePartyBalance(ctx context.Context, businessId string, ref PartyRef, balance decimal.Decimal) error {
	var model any
	switch ref.Role {
	case PartyRoleCustomer:
		model = &Customer{}
	case PartyRoleSupplier:
		model = &Supplier{}
	default:
		return fmt.Errorf("unknown party role %q", ref.Role)
	}
	res := s.db.WithContext(ctx).Model(model).
		Where("business_id = ? AND id = ?", businessId, ref.RefId).
		Update("current_balance", balance)
	if res.Error != nil {
		return utils.NewTransientStoreError("update "+ref.String()+" balance", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func (s *Store) ListSales(ctx context.Context) ([]*Sale, error) {
	var rows []*Sale
	if err := s.db.WithContext(ctx).Where("is_deleted = ?", false).Order("id").Find(&rows).Error; err != nil {
		return nil, utils.NewTransientStoreError("list sales", err)
	}
	return rows, nil
}

func (s *Store) ListGoodsReturns(ctx context.Context) ([]*GoodsReturn, error) {
	var rows []*GoodsReturn
	if err := s.db.WithContext(ctx).Where("is_deleted = ?", false).Order("id").Find(&rows).Error; err != nil {
		return nil, utils.NewTransientStoreError("list returns", err)
	}
	return rows, nil
}

func (s *Store) ListPurchaseInvoices(ctx context.Context) ([]*PurchaseInvoice, error) {
	var rows []*PurchaseInvoice
	if err := s.db.WithContext(ctx).Preload("Items").Where("is_deleted = ?", false).Order("id").Find(&rows).Error; err != nil {
		return nil, utils.NewTransientStoreError("list purchase invoices", err)
	}
	return rows, nil
}

func (s *Store) ListPurchaseOrders(ctx context.Context) ([]*PurchaseOrder, error) {
	var rows []*PurchaseOrder
	if err := s.db.WithContext(ctx).Preload("Items").Where("is_deleted = ?", false).Order("id").Find(&rows).Error; err != nil {
		return nil, utils.NewTransientStoreError("list purchase orders", err)
	}
	return rows, nil
}

func (s *Store) ListMoneyTransactions(ctx context.Context) ([]*MoneyTransaction, error) {
	var rows []*MoneyTransaction
	if err := s.db.WithContext(ctx).Where("is_deleted = ?", false).Order("id").Find(&rows).Error; err != nil {
		return nil, utils.NewTransientStoreError("list money transactions", err)
	}
	return rows, nil
}

// UpdateDocumentField is the narrow write used by reconciliation fixes: one column on one row.
func (s *Store) UpdateDocumentField(ctx context.Context, kind DocumentKind, id int, field string, value any) error {
	if !fixableFields[kind][field] {
		return fmt.Errorf("field %q of %s is not fixable", field, kind)
	}
	model, ok := modelForKind(kind)
	if !ok {
		return fmt.Errorf("unknown document kind %q", kind)
	}
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Update(field, value)
	if res.Error != nil {
		return utils.NewTransientStoreError(fmt.Sprintf("update %s %d %s", kind, id, field), res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func (s *Store) ListLedgerEntries(ctx context.Context) ([]*LedgerEntry, error) {
	var rows []*LedgerEntry
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, utils.NewTransientStoreError("list ledger entries", err)
	}
	return rows, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]*Account, error) {
	var rows []*Account
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, utils.NewTransientStoreError("list accounts", err)
	}
	return rows, nil
}

// ExistingDocumentIds returns the subset of ids that resolve to a document row of the
// given kind in the business. Soft-deleted rows still resolve.
func (s *Store) ExistingDocumentIds(ctx context.Context, businessId string, kind DocumentKind, ids []int) (map[int]bool, error) {
	found := map[int]bool{}
	if len(ids) == 0 {
		return found, nil
	}
	model, ok := modelForKind(kind)
	if !ok {
		return found, nil
	}
	q := s.db.WithContext(ctx).Model(model).Where("business_id = ? AND id IN ?", businessId, ids)
	if kind.IsMoneyTransaction() {
		q = q.Where("kind = ?", kind)
	}
	var existing []int
	if err := q.Pluck("id", &existing).Error; err != nil {
		return nil, utils.NewTransientStoreError("resolve "+string(kind)+" references", err)
	}
	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}

func modelForKind(kind DocumentKind) (any, bool) {
	switch kind {
	case DocumentKindSale:
		return &Sale{}, true
	case DocumentKindReturn:
		return &GoodsReturn{}, true
	case DocumentKindPurchaseInvoice:
		return &PurchaseInvoice{}, true
	case DocumentKindPurchaseOrder:
		return &PurchaseOrder{}, true
	case DocumentKindCashReceipt, DocumentKindBankReceipt, DocumentKindCashPayment, DocumentKindBankPayment:
		return &MoneyTransaction{}, true
	}
	return nil, false
}
