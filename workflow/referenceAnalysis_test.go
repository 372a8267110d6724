package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/commission_backend/models"
	"github.com/shopspring/decimal"
)

func invoiceRef(invoiceId int, amount float64) models.PaymentEntryReference {
	return models.PaymentEntryReference{
		ReferenceType:   models.ReferenceTypeSalesInvoice,
		ReferenceId:     invoiceId,
		AllocatedAmount: decimal.NewFromFloat(amount),
	}
}

func orderRef(orderId int, amount float64) models.PaymentEntryReference {
	return models.PaymentEntryReference{
		ReferenceType:   models.ReferenceTypeSalesOrder,
		ReferenceId:     orderId,
		AllocatedAmount: decimal.NewFromFloat(amount),
	}
}

func TestAnalyzeReferencesCaseType(t *testing.T) {

	cases := []struct {
		name string
		refs []models.PaymentEntryReference
		want CaseType
	}{
		{"no references", nil, CaseNoInvoices},
		{"orders only", []models.PaymentEntryReference{orderRef(7, 100)}, CaseNoInvoices},
		{"one invoice one row", []models.PaymentEntryReference{invoiceRef(1, 500)}, CaseSingleInvoice},
		{"one invoice two rows", []models.PaymentEntryReference{invoiceRef(1, 300), invoiceRef(1, 200)}, CaseSingleInvoiceMultipleRows},
		{"two invoices", []models.PaymentEntryReference{invoiceRef(1, 300), invoiceRef(2, 200)}, CaseMultipleInvoices},
		{"invoice plus order", []models.PaymentEntryReference{invoiceRef(1, 300), orderRef(7, 200)}, CaseSingleInvoice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analysis := AnalyzeReferences(&models.PaymentEntry{References: tc.refs})
			if analysis.CaseType != tc.want {
				t.Fatalf("case type = %s, want %s", analysis.CaseType, tc.want)
			}
		})
	}
}

func TestAnalyzeReferencesSumsSplitRows(t *testing.T) {

	analysis := AnalyzeReferences(&models.PaymentEntry{References: []models.PaymentEntryReference{
		invoiceRef(5, 300),
		invoiceRef(5, 200),
	}})

	got := analysis.InvoiceAllocations[5]
	if !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("allocation for invoice 5 = %s, want 500", got)
	}
	if analysis.InvoiceRowCount[5] != 2 {
		t.Fatalf("row count for invoice 5 = %d, want 2", analysis.InvoiceRowCount[5])
	}
}

func TestDistributeDeductionsProportional(t *testing.T) {

	allocations := map[int]decimal.Decimal{
		1: decimal.NewFromInt(600),
		2: decimal.NewFromInt(400),
	}
	shares := DistributeDeductions(allocations, decimal.NewFromInt(50), decimal.NewFromInt(1000))

	if !shares[1].Equal(decimal.NewFromInt(30)) {
		t.Fatalf("share for invoice 1 = %s, want 30", shares[1])
	}
	if !shares[2].Equal(decimal.NewFromInt(20)) {
		t.Fatalf("share for invoice 2 = %s, want 20", shares[2])
	}
}

func TestDistributeDeductionsResidueOnLastInvoice(t *testing.T) {

	// 100/3 rounds to 33.33 per invoice; the last id absorbs the extra cent.
	allocations := map[int]decimal.Decimal{
		1: decimal.NewFromInt(100),
		2: decimal.NewFromInt(100),
		3: decimal.NewFromInt(100),
	}
	total := decimal.NewFromInt(100)
	shares := DistributeDeductions(allocations, total, decimal.NewFromInt(300))

	if !shares[1].Equal(decimal.NewFromFloat(33.33)) {
		t.Fatalf("share for invoice 1 = %s, want 33.33", shares[1])
	}
	if !shares[3].Equal(decimal.NewFromFloat(33.34)) {
		t.Fatalf("share for invoice 3 = %s, want 33.34", shares[3])
	}

	sum := shares[1].Add(shares[2]).Add(shares[3])
	if !sum.Equal(total) {
		t.Fatalf("shares sum to %s, want %s", sum, total)
	}
}

func TestDistributeDeductionsZeroTotalPaid(t *testing.T) {

	allocations := map[int]decimal.Decimal{
		1: decimal.Zero,
		2: decimal.Zero,
	}
	shares := DistributeDeductions(allocations, decimal.NewFromInt(50), decimal.Zero)

	if !shares[1].Equal(decimal.NewFromInt(25)) || !shares[2].Equal(decimal.NewFromInt(25)) {
		t.Fatalf("zero-paid split = %s / %s, want equal 25 / 25", shares[1], shares[2])
	}
}

func TestDistributeDeductionsPartialAllocationKeepsProportion(t *testing.T) {

	// Half the payment went to an order, so the invoice only carries its
	// proportional share and no residue is forced onto it.
	allocations := map[int]decimal.Decimal{1: decimal.NewFromInt(500)}
	shares := DistributeDeductions(allocations, decimal.NewFromInt(40), decimal.NewFromInt(1000))

	if !shares[1].Equal(decimal.NewFromInt(20)) {
		t.Fatalf("share for invoice 1 = %s, want 20", shares[1])
	}
}

func TestTaxAmountFromInvoice(t *testing.T) {

	invoice := &models.SalesInvoice{
		InvoiceTotalAmount:    decimal.NewFromInt(1100),
		InvoiceTotalTaxAmount: decimal.NewFromInt(100),
	}

	got := TaxAmountFromInvoice(invoice, decimal.NewFromInt(1000))
	if !got.Equal(decimal.NewFromFloat(90.91)) {
		t.Fatalf("tax share = %s, want 90.91", got)
	}

	full := TaxAmountFromInvoice(invoice, decimal.NewFromInt(1100))
	if !full.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("tax share at full payment = %s, want 100", full)
	}
}

func TestTaxAmountFromInvoiceZeroGrandTotal(t *testing.T) {

	invoice := &models.SalesInvoice{
		InvoiceTotalAmount:    decimal.Zero,
		InvoiceTotalTaxAmount: decimal.NewFromInt(100),
	}
	if got := TaxAmountFromInvoice(invoice, decimal.NewFromInt(500)); !got.IsZero() {
		t.Fatalf("tax share with zero grand total = %s, want 0", got)
	}
}
