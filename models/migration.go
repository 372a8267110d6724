package models

import (
	"bitbucket.org/mmdatafocus/commission_backend/config"
)

func MigrateTable() {
	db := config.GetDB()
	db.AutoMigrate(
		&SalesPerson{},
		&Customer{},
		&SalesOrder{},
		&SalesInvoice{},
		&SalesInvoiceDetail{},
		&SalesTeamEntry{},
		&PaymentEntry{},
		&PaymentEntryReference{},
		&PaymentEntryDeduction{},
	)
}
