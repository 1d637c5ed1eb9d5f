package models_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mmdatafocus/pos_ledger/config"
	"github.com/mmdatafocus/pos_ledger/models"
	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.OpenDatabase(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return utils.NullDecimal(d(s)) }

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

func TestStore_ListPartiesSkipsDeleted(t *testing.T) {
	db := openTestDB(t)
	mustCreate(t, db, &models.Customer{BusinessId: "b1", Name: "Alice"})
	mustCreate(t, db, &models.Customer{BusinessId: "b1", Name: "Gone", IsDeleted: true})
	mustCreate(t, db, &models.Supplier{BusinessId: "b2", Name: "Acme"})
	store := models.NewStore(db)

	customers, err := store.ListParties(context.Background(), models.PartyRoleCustomer)
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if len(customers) != 1 || customers[0].Name != "Alice" || !customers[0].Ref.IsCustomer() {
		t.Fatalf("unexpected customers: %+v", customers)
	}
	suppliers, err := store.ListParties(context.Background(), models.PartyRoleSupplier)
	if err != nil {
		t.Fatalf("list suppliers: %v", err)
	}
	if len(suppliers) != 1 || suppliers[0].BusinessId != "b2" || !suppliers[0].Ref.IsSupplier() {
		t.Fatalf("unexpected suppliers: %+v", suppliers)
	}
}

func TestStore_ListPartyDocumentsAndBalanceWrite(t *testing.T) {
	db := openTestDB(t)
	c := &models.Customer{BusinessId: "b1", Name: "Alice"}
	other := &models.Customer{BusinessId: "b1", Name: "Bob"}
	mustCreate(t, db, c)
	mustCreate(t, db, other)
	ref := models.CustomerRef(c.ID)

	mustCreate(t, db, &models.Sale{BusinessId: "b1", PartyRef: ref, Total: nd("1000"), Status: models.SaleStatusPending})
	mustCreate(t, db, &models.Sale{BusinessId: "b1", PartyRef: ref, Total: nd("999"), Status: models.SaleStatusPending, IsDeleted: true})
	mustCreate(t, db, &models.Sale{BusinessId: "b1", PartyRef: models.CustomerRef(other.ID), Total: nd("5"), Status: models.SaleStatusPending})
	mustCreate(t, db, &models.MoneyTransaction{BusinessId: "b1", PartyRef: ref, DocumentKind: models.DocumentKindCashReceipt, Amount: nd("300")})
	mustCreate(t, db, &models.GoodsReturn{BusinessId: "b1", PartyRef: ref, Origin: models.ReturnOriginSales,
		TotalAmount: nd("50"), NetRefundAmount: nd("50"), Status: models.ReturnStatusCompleted})
	store := models.NewStore(db)

	docs, err := store.ListPartyDocuments(context.Background(), "b1", ref)
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 live documents, got %d", len(docs))
	}
	sum := decimal.Zero
	for _, doc := range docs {
		sum = sum.Add(doc.BalanceContribution(models.PartyRoleCustomer))
	}
	if !sum.Equal(d("650")) {
		t.Fatalf("expected 650, got %s", sum)
	}

	if err := store.UpdatePartyBalance(context.Background(), "b1", ref, sum); err != nil {
		t.Fatalf("update balance: %v", err)
	}
	party, err := store.FindParty(context.Background(), ref)
	if err != nil {
		t.Fatalf("find party: %v", err)
	}
	if !party.CurrentBalance.Equal(d("650")) {
		t.Fatalf("expected stored 650, got %s", party.CurrentBalance)
	}

	if err := store.UpdatePartyBalance(context.Background(), "b1", models.CustomerRef(9999), sum); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.FindParty(context.Background(), models.SupplierRef(9999)); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStore_UpdateDocumentFieldIsWhitelisted(t *testing.T) {
	db := openTestDB(t)
	s := &models.Sale{BusinessId: "b1", PartyRef: models.CustomerRef(1), Total: nd("100"), Status: models.SaleStatusPending}
	mustCreate(t, db, s)
	store := models.NewStore(db)

	if err := store.UpdateDocumentField(context.Background(), models.DocumentKindSale, s.ID, "remaining_balance", d("60")); err != nil {
		t.Fatalf("update remaining: %v", err)
	}
	if err := store.UpdateDocumentField(context.Background(), models.DocumentKindSale, s.ID, "status", "partial"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := store.UpdateDocumentField(context.Background(), models.DocumentKindSale, s.ID, "total", d("1")); err == nil {
		t.Fatalf("expected total to be rejected for sales")
	}
	if err := store.UpdateDocumentField(context.Background(), models.DocumentKindSale, 9999, "status", "paid"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	sales, err := store.ListSales(context.Background())
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 1 || !sales[0].RemainingBalance.Equal(d("60")) || sales[0].Status != models.SaleStatusPartial {
		t.Fatalf("unexpected sale after fix: %+v", sales)
	}
	if !sales[0].Total.Decimal.Equal(d("100")) {
		t.Fatalf("other columns must be untouched, total %s", sales[0].Total.Decimal)
	}
}

func TestStore_ListPurchaseInvoicesPreloadsItems(t *testing.T) {
	db := openTestDB(t)
	mustCreate(t, db, &models.PurchaseInvoice{
		BusinessId: "b1", PartyRef: models.SupplierRef(1), Status: models.PurchaseInvoiceStatusConfirmed,
		Items: []models.PurchaseInvoiceItem{
			{ProductName: "flour", Qty: nd("2"), UnitCost: nd("10")},
			{ProductName: "salt", Qty: nd("1"), UnitCost: nd("5")},
		},
		Discount: nd("5"), Tax: nd("2"), Total: nd("22"),
	})
	invoices, err := models.NewStore(db).ListPurchaseInvoices(context.Background())
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	if len(invoices) != 1 || len(invoices[0].Items) != 2 {
		t.Fatalf("expected one invoice with two lines, got %+v", invoices)
	}
	if got := invoices[0].ItemsTotal(); !got.Equal(d("22")) {
		t.Fatalf("expected items total 22, got %s", got)
	}
	if invoices[0].PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("expected default payment status pending, got %q", invoices[0].PaymentStatus)
	}
}

func TestStore_ExistingDocumentIds(t *testing.T) {
	db := openTestDB(t)
	live := &models.Sale{BusinessId: "b1", PartyRef: models.CustomerRef(1), Status: models.SaleStatusPaid}
	deleted := &models.Sale{BusinessId: "b1", PartyRef: models.CustomerRef(1), Status: models.SaleStatusPaid, IsDeleted: true}
	elsewhere := &models.Sale{BusinessId: "b2", PartyRef: models.CustomerRef(1), Status: models.SaleStatusPaid}
	receipt := &models.MoneyTransaction{BusinessId: "b1", PartyRef: models.CustomerRef(1), DocumentKind: models.DocumentKindCashReceipt, Amount: nd("1")}
	for _, v := range []any{live, deleted, elsewhere, receipt} {
		mustCreate(t, db, v)
	}
	store := models.NewStore(db)
	ctx := context.Background()

	found, err := store.ExistingDocumentIds(ctx, "b1", models.DocumentKindSale, []int{live.ID, deleted.ID, elsewhere.ID, 9999})
	if err != nil {
		t.Fatalf("resolve sales: %v", err)
	}
	if !found[live.ID] || !found[deleted.ID] || found[elsewhere.ID] || found[9999] {
		t.Fatalf("unexpected resolution: %v", found)
	}

	found, err = store.ExistingDocumentIds(ctx, "b1", models.DocumentKindBankPayment, []int{receipt.ID})
	if err != nil {
		t.Fatalf("resolve payments: %v", err)
	}
	if found[receipt.ID] {
		t.Fatalf("a cash receipt must not resolve as a bank payment")
	}

	found, err = store.ExistingDocumentIds(ctx, "b1", models.DocumentKind("Journal"), []int{1})
	if err != nil || len(found) != 0 {
		t.Fatalf("unknown kinds resolve nothing, got %v %v", found, err)
	}
}

func TestStore_TenantGuardScopesReads(t *testing.T) {
	db := openTestDB(t)
	mustCreate(t, db, &models.Sale{BusinessId: "b1", PartyRef: models.CustomerRef(1), Status: models.SaleStatusPaid})
	mustCreate(t, db, &models.Sale{BusinessId: "b2", PartyRef: models.CustomerRef(1), Status: models.SaleStatusPaid})
	store := models.NewStore(db)

	scoped := utils.SetBusinessIdInContext(context.Background(), "b1")
	sales, err := store.ListSales(scoped)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 1 || sales[0].BusinessId != "b1" {
		t.Fatalf("expected only b1 sales, got %+v", sales)
	}

	all, err := store.ListSales(utils.SetSkipTenantScopeInContext(scoped, true))
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both tenants when the guard is bypassed, got %d", len(all))
	}
}

func TestStore_LedgerReads(t *testing.T) {
	db := openTestDB(t)
	reversed := 1
	mustCreate(t, db, &models.Account{BusinessId: "b1", Code: "1000", Name: "Cash", MainType: models.AccountMainTypeAsset, StoredBalance: d("10")})
	mustCreate(t, db, &models.LedgerEntry{BusinessId: "b1", JournalId: 1, AccountCode: "1000", DebitAmount: d("10"),
		ReferenceType: models.DocumentKindSale, ReferenceId: 1})
	mustCreate(t, db, &models.LedgerEntry{BusinessId: "b1", JournalId: 2, AccountCode: "1000", CreditAmount: d("10"),
		ReferenceType: models.DocumentKindSale, ReferenceId: 1, ReversalOfJournalId: &reversed})
	store := models.NewStore(db)

	entries, err := store.ListLedgerEntries(context.Background())
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 2 || entries[0].IsReversal() || !entries[1].IsReversal() {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	accounts, err := store.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 || !accounts[0].OrientedBalance(d("10"), d("4")).Equal(d("6")) {
		t.Fatalf("unexpected accounts: %+v", accounts)
	}
}
