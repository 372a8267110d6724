package models

type PaymentType string

const (
	PaymentTypeReceive PaymentType = "Receive"
	PaymentTypePay     PaymentType = "Pay"
)

type ReferenceType string

const (
	ReferenceTypeSalesInvoice ReferenceType = "Sales Invoice"
	ReferenceTypeSalesOrder   ReferenceType = "Sales Order"
)

// document lifecycle status, Frappe-style: draft documents may be edited,
// submitted documents are immutable, cancelled documents are dead.
type Docstatus int

const (
	DocstatusDraft     Docstatus = 0
	DocstatusSubmitted Docstatus = 1
	DocstatusCancelled Docstatus = 2
)
