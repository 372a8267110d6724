package workflow

import (
	"sort"

	"bitbucket.org/mmdatafocus/commission_backend/models"
	"bitbucket.org/mmdatafocus/commission_backend/utils"
	"github.com/shopspring/decimal"
)

type CaseType string

const (
	CaseNoInvoices                CaseType = "no_invoices"
	CaseSingleInvoice             CaseType = "single_invoice"
	CaseSingleInvoiceMultipleRows CaseType = "single_invoice_multiple_rows"
	CaseMultipleInvoices          CaseType = "multiple_invoices"
)

// ReferenceAnalysis is the classified view of a payment's reference rows.
// Allocations are summed per referenced document, so an invoice split across
// several rows appears once with its combined amount.
type ReferenceAnalysis struct {
	CaseType           CaseType
	InvoiceAllocations map[int]decimal.Decimal
	OrderAllocations   map[int]decimal.Decimal
	InvoiceRowCount    map[int]int
}

func AnalyzeReferences(paymentEntry *models.PaymentEntry) *ReferenceAnalysis {

	analysis := &ReferenceAnalysis{
		InvoiceAllocations: map[int]decimal.Decimal{},
		OrderAllocations:   map[int]decimal.Decimal{},
		InvoiceRowCount:    map[int]int{},
	}

	for _, ref := range paymentEntry.References {
		switch ref.ReferenceType {
		case models.ReferenceTypeSalesInvoice:
			analysis.InvoiceAllocations[ref.ReferenceId] =
				analysis.InvoiceAllocations[ref.ReferenceId].Add(ref.AllocatedAmount)
			analysis.InvoiceRowCount[ref.ReferenceId]++
		case models.ReferenceTypeSalesOrder:
			analysis.OrderAllocations[ref.ReferenceId] =
				analysis.OrderAllocations[ref.ReferenceId].Add(ref.AllocatedAmount)
		}
	}

	switch {
	case len(analysis.InvoiceAllocations) == 0:
		analysis.CaseType = CaseNoInvoices
	case len(analysis.InvoiceAllocations) > 1:
		analysis.CaseType = CaseMultipleInvoices
	default:
		analysis.CaseType = CaseSingleInvoice
		for _, count := range analysis.InvoiceRowCount {
			if count > 1 {
				analysis.CaseType = CaseSingleInvoiceMultipleRows
			}
		}
	}
	return analysis
}

// SortedInvoiceIds returns the referenced invoice ids in ascending order.
// Processing order and the rounding-residue assignment both depend on it.
func (a *ReferenceAnalysis) SortedInvoiceIds() []int {
	ids := make([]int, 0, len(a.InvoiceAllocations))
	for id := range a.InvoiceAllocations {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// DistributeDeductions splits the payment's total deductions across invoices
// in proportion to each invoice's allocated amount over the payment total.
// When the payment total is zero the split is equal. Each share is rounded to
// 2 decimals; when the invoices absorb the whole payment, the rounding residue
// lands on the last invoice in ascending id order so the shares sum exactly.
func DistributeDeductions(allocations map[int]decimal.Decimal, totalDeductions decimal.Decimal, totalPaid decimal.Decimal) map[int]decimal.Decimal {

	shares := make(map[int]decimal.Decimal, len(allocations))
	if len(allocations) == 0 {
		return shares
	}

	ids := make([]int, 0, len(allocations))
	allocatedSum := decimal.Zero
	for id, amount := range allocations {
		ids = append(ids, id)
		allocatedSum = allocatedSum.Add(amount)
	}
	sort.Ints(ids)

	assigned := decimal.Zero
	count := decimal.NewFromInt(int64(len(ids)))
	for _, id := range ids {
		var share decimal.Decimal
		if totalPaid.IsZero() {
			share = utils.Round2(totalDeductions.Div(count))
		} else {
			share = utils.Round2(totalDeductions.Mul(allocations[id]).Div(totalPaid))
		}
		shares[id] = share
		assigned = assigned.Add(share)
	}

	if totalPaid.IsZero() || allocatedSum.Equal(totalPaid) {
		last := ids[len(ids)-1]
		shares[last] = shares[last].Add(totalDeductions.Sub(assigned))
	}
	return shares
}

// TaxAmountFromInvoice apportions the invoice's tax onto a paid amount by the
// invoice's own tax-to-grand-total ratio. A non-positive grand total yields
// zero rather than a division error.
func TaxAmountFromInvoice(invoice *models.SalesInvoice, amount decimal.Decimal) decimal.Decimal {

	if invoice.InvoiceTotalAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return utils.Round2(amount.Mul(invoice.InvoiceTotalTaxAmount).Div(invoice.InvoiceTotalAmount))
}
