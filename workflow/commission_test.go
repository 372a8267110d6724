package workflow

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/commission_backend/models"
	"bitbucket.org/mmdatafocus/commission_backend/utils"
	"github.com/shopspring/decimal"
)

// A payment of 1000 against an invoice of 1100 (tax 100) with 50 of bank
// deductions. The allocated share carries 90.91 of apportioned tax, but the
// net contribution surrenders the invoice's full tax: 1000 - 50 - 100 = 850.
// At a commission rate of 10 the sales person earns 85.
func TestSingleInvoiceWorkedScenario(t *testing.T) {

	paymentEntry := &models.PaymentEntry{
		ID:                   99,
		PaymentType:          models.PaymentTypeReceive,
		PostingDate:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalAllocatedAmount: decimal.NewFromInt(1000),
		References: []models.PaymentEntryReference{
			invoiceRef(10, 1000),
		},
		Deductions: []models.PaymentEntryDeduction{
			{Amount: decimal.NewFromInt(50)},
		},
	}
	invoice := &models.SalesInvoice{
		ID:                    10,
		InvoiceTotalAmount:    decimal.NewFromInt(1100),
		InvoiceTotalTaxAmount: decimal.NewFromInt(100),
		SalesTeam: []models.SalesTeamEntry{
			{SalesPersonId: 1, CommissionRate: decimal.NewFromInt(10)},
		},
	}

	analysis := AnalyzeReferences(paymentEntry)
	if analysis.CaseType != CaseSingleInvoice {
		t.Fatalf("case type = %s, want %s", analysis.CaseType, CaseSingleInvoice)
	}

	shares := DistributeDeductions(analysis.InvoiceAllocations,
		paymentEntry.TotalDeductions(), paymentEntry.TotalAllocatedAmount)
	if !shares[10].Equal(decimal.NewFromInt(50)) {
		t.Fatalf("deduction share = %s, want 50", shares[10])
	}

	allocated := analysis.InvoiceAllocations[10]
	taxShare := TaxAmountFromInvoice(invoice, allocated)
	if !taxShare.Equal(decimal.NewFromFloat(90.91)) {
		t.Fatalf("tax share = %s, want 90.91", taxShare)
	}

	netContribution := utils.Round2(
		allocated.Sub(shares[10]).Sub(invoice.InvoiceTotalTaxAmount))
	if !netContribution.Equal(decimal.NewFromInt(850)) {
		t.Fatalf("net contribution = %s, want 850", netContribution)
	}

	team := dedupMembers(invoice.SalesTeam)
	count, details := ReconcileSalesTeam(invoice, paymentEntry.ID,
		paymentEntry.PostingDate, team, netContribution)
	if count != 1 {
		t.Fatalf("own row count = %d, want 1", count)
	}
	if !details[0].Incentive.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("incentive = %s, want 85", details[0].Incentive)
	}
}

// Reprocessing the same payment must not duplicate rows or drift the figures.
func TestReprocessingIsIdempotent(t *testing.T) {

	invoice := &models.SalesInvoice{
		ID: 10,
		SalesTeam: []models.SalesTeamEntry{
			{SalesPersonId: 1, CommissionRate: decimal.NewFromInt(10)},
		},
	}
	team := dedupMembers(invoice.SalesTeam)
	postingDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	net := decimal.NewFromInt(850)

	ReconcileSalesTeam(invoice, 99, postingDate, team, net)
	firstPass := make([]models.SalesTeamEntry, len(invoice.SalesTeam))
	copy(firstPass, invoice.SalesTeam)
	// Simulate the db having assigned row ids before the second pass.
	for i := range invoice.SalesTeam {
		invoice.SalesTeam[i].ID = i + 1
	}

	count, details := ReconcileSalesTeam(invoice, 99, postingDate, team, net)

	if count != 1 || len(invoice.SalesTeam) != 1 {
		t.Fatalf("second pass rows = %d (count %d), want 1", len(invoice.SalesTeam), count)
	}
	if invoice.SalesTeam[0].ID != 1 {
		t.Fatalf("second pass replaced the row instead of updating it")
	}
	if !invoice.SalesTeam[0].Incentives.Equal(firstPass[0].Incentives) {
		t.Fatalf("incentive drifted: %s then %s",
			firstPass[0].Incentives, invoice.SalesTeam[0].Incentives)
	}
	if !details[0].Incentive.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("incentive = %s, want 85", details[0].Incentive)
	}
}

// Two invoices under one payment: the deduction splits in proportion and each
// invoice gets its own net contribution.
func TestTwoInvoicePayment(t *testing.T) {

	paymentEntry := &models.PaymentEntry{
		ID:                   99,
		PaymentType:          models.PaymentTypeReceive,
		TotalAllocatedAmount: decimal.NewFromInt(1000),
		References: []models.PaymentEntryReference{
			invoiceRef(1, 600),
			invoiceRef(2, 400),
		},
		Deductions: []models.PaymentEntryDeduction{
			{Amount: decimal.NewFromInt(50)},
		},
	}

	analysis := AnalyzeReferences(paymentEntry)
	if analysis.CaseType != CaseMultipleInvoices {
		t.Fatalf("case type = %s, want %s", analysis.CaseType, CaseMultipleInvoices)
	}

	ids := analysis.SortedInvoiceIds()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("sorted ids = %v, want [1 2]", ids)
	}

	shares := DistributeDeductions(analysis.InvoiceAllocations,
		paymentEntry.TotalDeductions(), paymentEntry.TotalAllocatedAmount)
	if !shares[1].Equal(decimal.NewFromInt(30)) || !shares[2].Equal(decimal.NewFromInt(20)) {
		t.Fatalf("shares = %s / %s, want 30 / 20", shares[1], shares[2])
	}

	sum := shares[1].Add(shares[2])
	if !sum.Equal(paymentEntry.TotalDeductions()) {
		t.Fatalf("shares sum to %s, want %s", sum, paymentEntry.TotalDeductions())
	}
}

// The customer's sales team is the fallback when neither the invoice nor an
// order carries one; both representatives must come across.
func TestCustomerFallbackCopiesAllRepresentatives(t *testing.T) {

	customerTeam := []models.SalesTeamEntry{
		{SalesPersonId: 1, CommissionRate: decimal.NewFromInt(5), AllocatedPercentage: decimal.NewFromInt(60)},
		{SalesPersonId: 2, CommissionRate: decimal.NewFromInt(3), AllocatedPercentage: decimal.NewFromInt(40)},
	}

	members := dedupMembers(customerTeam)
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}

	invoice := &models.SalesInvoice{ID: 10}
	count, details := ReconcileSalesTeam(invoice, 99, time.Now(), members, decimal.NewFromInt(1000))
	if count != 2 || len(details) != 2 {
		t.Fatalf("rows = %d details = %d, want 2 and 2", count, len(details))
	}
	// 0.05 x 1000 and 0.03 x 1000; the percentages do not scale the base.
	if !details[0].Incentive.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("first incentive = %s, want 50", details[0].Incentive)
	}
	if !details[1].Incentive.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("second incentive = %s, want 30", details[1].Incentive)
	}
}
