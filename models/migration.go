package models

import "gorm.io/gorm"

func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&Customer{}, &Supplier{},
		&Sale{}, &GoodsReturn{},
		&PurchaseInvoice{}, &PurchaseInvoiceItem{},
		&PurchaseOrder{}, &PurchaseOrderItem{},
		&MoneyTransaction{},
		&Account{}, &LedgerEntry{},
	)
}
