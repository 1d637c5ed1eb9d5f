package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedDemoLedger writes a small, internally consistent book for one business: one customer
// owing 650, one supplier owed 500, their documents, and the balanced ledger behind them.
// Cached balances are left at zero so a rebuild has work to do.
func SeedDemoLedger(ctx context.Context, db *gorm.DB, businessId string) error {
	amount := func(s string) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
	}
	now := time.Now().UTC()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer := &Customer{BusinessId: businessId, Name: "Walk-in Customer"}
		supplier := &Supplier{BusinessId: businessId, Name: "Main Supplier"}
		if err := tx.Create(customer).Error; err != nil {
			return err
		}
		if err := tx.Create(supplier).Error; err != nil {
			return err
		}
		cust := CustomerRef(customer.ID)
		supp := SupplierRef(supplier.ID)

		sale := &Sale{BusinessId: businessId, PartyRef: cust, InvoiceNumber: "INV-0001",
			Total: amount("1000"), AmountPaid: amount("300"), RemainingBalance: decimal.RequireFromString("700"), Status: SaleStatusPartial}
		receipt := &MoneyTransaction{BusinessId: businessId, PartyRef: cust, DocumentKind: DocumentKindCashReceipt,
			TransactionNumber: "RC-0001", Amount: amount("300"), TransactionDateTime: now}
		salesReturn := &GoodsReturn{BusinessId: businessId, PartyRef: cust, Origin: ReturnOriginSales, ReferenceNumber: "SR-0001",
			TotalAmount: amount("50"), RestockingFee: amount("0"), NetRefundAmount: amount("50"), Status: ReturnStatusCompleted}
		invoice := &PurchaseInvoice{BusinessId: businessId, PartyRef: supp, InvoiceNumber: "PI-0001",
			Items: []PurchaseInvoiceItem{
				{ProductName: "Rice 50kg", Qty: amount("10"), UnitCost: amount("60")},
				{ProductName: "Cooking oil", Qty: amount("4"), UnitCost: amount("25")},
			},
			Discount: amount("0"), Tax: amount("0"), Total: amount("700"), AmountPaid: amount("200"),
			Status: PurchaseInvoiceStatusConfirmed, PaymentStatus: PaymentStatusPartial}
		payment := &MoneyTransaction{BusinessId: businessId, PartyRef: supp, DocumentKind: DocumentKindBankPayment,
			TransactionNumber: "BP-0001", Amount: amount("200"), TransactionDateTime: now}
		order := &PurchaseOrder{BusinessId: businessId, PartyRef: supp, OrderNumber: "PO-0001", Status: PurchaseOrderStatusFullyReceived,
			Items: []PurchaseOrderItem{{ProductName: "Rice 50kg", OrderedQty: amount("10"), ReceivedQty: amount("10")}}}
		for _, v := range []any{sale, receipt, salesReturn, invoice, payment, order} {
			if err := tx.Create(v).Error; err != nil {
				return err
			}
		}

		accounts := []*Account{
			{BusinessId: businessId, Code: "1000", Name: "Cash", MainType: AccountMainTypeAsset, StoredBalance: decimal.RequireFromString("100")},
			{BusinessId: businessId, Code: "1100", Name: "Accounts Receivable", MainType: AccountMainTypeAsset, StoredBalance: decimal.RequireFromString("650")},
			{BusinessId: businessId, Code: "1200", Name: "Inventory", MainType: AccountMainTypeAsset, StoredBalance: decimal.RequireFromString("700")},
			{BusinessId: businessId, Code: "2000", Name: "Accounts Payable", MainType: AccountMainTypeLiability, StoredBalance: decimal.RequireFromString("500")},
			{BusinessId: businessId, Code: "4000", Name: "Sales", MainType: AccountMainTypeIncome, StoredBalance: decimal.RequireFromString("950")},
		}
		if err := tx.Create(&accounts).Error; err != nil {
			return err
		}

		journal := 0
		var entries []*LedgerEntry
		post := func(kind DocumentKind, refId int, debit, credit, value string) {
			journal++
			v := decimal.RequireFromString(value)
			entries = append(entries,
				&LedgerEntry{BusinessId: businessId, JournalId: journal, AccountCode: debit, DebitAmount: v, CreditAmount: decimal.Zero,
					ReferenceType: kind, ReferenceId: refId, Timestamp: now},
				&LedgerEntry{BusinessId: businessId, JournalId: journal, AccountCode: credit, DebitAmount: decimal.Zero, CreditAmount: v,
					ReferenceType: kind, ReferenceId: refId, Timestamp: now},
			)
		}
		post(DocumentKindSale, sale.ID, "1100", "4000", "1000")
		post(DocumentKindCashReceipt, receipt.ID, "1000", "1100", "300")
		post(DocumentKindReturn, salesReturn.ID, "4000", "1100", "50")
		post(DocumentKindPurchaseInvoice, invoice.ID, "1200", "2000", "700")
		post(DocumentKindBankPayment, payment.ID, "2000", "1000", "200")
		return tx.Create(&entries).Error
	})
}
