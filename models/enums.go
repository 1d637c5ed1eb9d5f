package models

type PartyRole string

const (
	PartyRoleCustomer PartyRole = "customer"
	PartyRoleSupplier PartyRole = "supplier"
)

func (r PartyRole) IsValid() bool {
	return r == PartyRoleCustomer || r == PartyRoleSupplier
}

type DocumentKind string

const (
	DocumentKindSale            DocumentKind = "Sale"
	DocumentKindReturn          DocumentKind = "Return"
	DocumentKindPurchaseInvoice DocumentKind = "PurchaseInvoice"
	DocumentKindPurchaseOrder   DocumentKind = "PurchaseOrder"
	DocumentKindCashReceipt     DocumentKind = "CashReceipt"
	DocumentKindBankReceipt     DocumentKind = "BankReceipt"
	DocumentKindCashPayment     DocumentKind = "CashPayment"
	DocumentKindBankPayment     DocumentKind = "BankPayment"

	// DocumentKindMoneyTransaction labels the money family as a whole. No document
	// carries it; it appears only on family-level findings.
	DocumentKindMoneyTransaction DocumentKind = "MoneyTransaction"
)

func (k DocumentKind) IsMoneyTransaction() bool {
	switch k {
	case DocumentKindCashReceipt, DocumentKindBankReceipt, DocumentKindCashPayment, DocumentKindBankPayment:
		return true
	}
	return false
}

func (k DocumentKind) IsReceipt() bool {
	return k == DocumentKindCashReceipt || k == DocumentKindBankReceipt
}

func (k DocumentKind) IsPayment() bool {
	return k == DocumentKindCashPayment || k == DocumentKindBankPayment
}

type SaleStatus string

const (
	SaleStatusDraft     SaleStatus = "draft"
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusPartial   SaleStatus = "partial"
	SaleStatusPaid      SaleStatus = "paid"
	SaleStatusCancelled SaleStatus = "cancelled"
	SaleStatusClosed    SaleStatus = "closed"
	SaleStatusReturned  SaleStatus = "returned"
)

type ReturnOrigin string

const (
	ReturnOriginSales    ReturnOrigin = "sales"
	ReturnOriginPurchase ReturnOrigin = "purchase"
)

type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusReceived  ReturnStatus = "received"
	ReturnStatusCompleted ReturnStatus = "completed"
	ReturnStatusRefunded  ReturnStatus = "refunded"
	ReturnStatusRejected  ReturnStatus = "rejected"
	ReturnStatusCancelled ReturnStatus = "cancelled"
)

// CountsTowardBalance is true for returns whose refund reduces the party balance.
func (s ReturnStatus) CountsTowardBalance() bool {
	switch s {
	case ReturnStatusCompleted, ReturnStatusRefunded, ReturnStatusApproved, ReturnStatusReceived:
		return true
	}
	return false
}

type PurchaseInvoiceStatus string

const (
	PurchaseInvoiceStatusDraft     PurchaseInvoiceStatus = "draft"
	PurchaseInvoiceStatusConfirmed PurchaseInvoiceStatus = "confirmed"
	PurchaseInvoiceStatusCancelled PurchaseInvoiceStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft             PurchaseOrderStatus = "draft"
	PurchaseOrderStatusConfirmed         PurchaseOrderStatus = "confirmed"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "partially_received"
	PurchaseOrderStatusFullyReceived     PurchaseOrderStatus = "fully_received"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "cancelled"
	PurchaseOrderStatusClosed            PurchaseOrderStatus = "closed"
)

type AccountMainType string

const (
	AccountMainTypeAsset     AccountMainType = "Asset"
	AccountMainTypeLiability AccountMainType = "Liability"
	AccountMainTypeEquity    AccountMainType = "Equity"
	AccountMainTypeIncome    AccountMainType = "Income"
	AccountMainTypeExpense   AccountMainType = "Expense"
)

// IsDebitNormal is true for account types whose balance grows with debits.
func (t AccountMainType) IsDebitNormal() bool {
	return t == AccountMainTypeAsset || t == AccountMainTypeExpense
}
