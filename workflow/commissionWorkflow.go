package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/commission_backend/config"
	"bitbucket.org/mmdatafocus/commission_backend/models"
	"bitbucket.org/mmdatafocus/commission_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// CalculationResult is the full outcome of one net-contribution run over a
// payment entry. Invoices that could not be processed carry their own error
// instead of failing the whole run.
type CalculationResult struct {
	Status          string           `json:"status"`
	CaseType        CaseType         `json:"case_type"`
	Summary         string           `json:"summary"`
	TotalPaid       decimal.Decimal  `json:"total_paid"`
	TotalDeductions decimal.Decimal  `json:"total_deductions"`
	Invoices        []InvoiceOutcome `json:"invoices"`
}

type InvoiceOutcome struct {
	InvoiceId       int                 `json:"invoice_id"`
	InvoiceNumber   string              `json:"invoice_number"`
	AllocatedAmount decimal.Decimal     `json:"allocated_amount"`
	DeductionShare  decimal.Decimal     `json:"deduction_share"`
	TaxShare        decimal.Decimal     `json:"tax_share"`
	NetPaid         decimal.Decimal     `json:"net_paid"`
	NetContribution decimal.Decimal     `json:"net_contribution"`
	SalesTeamCount  int                 `json:"sales_team_count"`
	SalesPersons    []SalesPersonDetail `json:"sales_persons"`
	Error           string              `json:"error,omitempty"`
}

// CalculateNetContribution recomputes, for every invoice the payment entry
// references, the net amount the payment contributes after its deduction share
// and the invoice's taxes, and rewrites the invoice sales team rows with each
// person's incentive. Safe to re-run: a second pass over the same payment
// updates its own rows in place.
//
// Validation failures return an error. Per-invoice failures roll back that
// invoice only and are reported inside the result.
func CalculateNetContribution(ctx context.Context, logger *logrus.Logger, paymentEntryId int) (*CalculationResult, error) {

	paymentEntry, err := models.GetPaymentEntry(ctx, paymentEntryId)
	if err != nil {
		return nil, err
	}

	analysis := AnalyzeReferences(paymentEntry)
	result := &CalculationResult{
		Status:          StatusSuccess,
		CaseType:        analysis.CaseType,
		TotalPaid:       paymentEntry.TotalAllocatedAmount,
		TotalDeductions: paymentEntry.TotalDeductions(),
	}

	// Only incoming money earns commission; anything else is a quiet no-op.
	if paymentEntry.PaymentType != models.PaymentTypeReceive {
		result.Status = StatusSkipped
		result.Summary = "payment type is not Receive, nothing to recalculate"
		return result, nil
	}

	if analysis.CaseType == CaseNoInvoices {
		if len(analysis.OrderAllocations) > 0 {
			return nil, errors.New("payment references sales orders only; commission requires a sales invoice")
		}
		return nil, errors.New("payment references no sales invoices")
	}

	shares := DistributeDeductions(
		analysis.InvoiceAllocations,
		result.TotalDeductions,
		paymentEntry.TotalAllocatedAmount,
	)

	failed := 0
	for _, invoiceId := range analysis.SortedInvoiceIds() {
		outcome := processInvoice(ctx, logger, paymentEntry, invoiceId,
			analysis.InvoiceAllocations[invoiceId], shares[invoiceId])
		if outcome.Error != "" {
			failed++
		}
		result.Invoices = append(result.Invoices, outcome)
	}

	if failed > 0 {
		result.Status = StatusError
		result.Summary = fmt.Sprintf("recalculated %d of %d invoices, %d failed",
			len(result.Invoices)-failed, len(result.Invoices), failed)
	} else {
		result.Summary = fmt.Sprintf("recalculated commissions for %d invoice(s)",
			len(result.Invoices))
	}
	return result, nil
}

// processInvoice runs one invoice's recalculation in its own transaction under
// a per-invoice advisory lock, so a failure on one invoice never rolls back
// the others.
func processInvoice(ctx context.Context, logger *logrus.Logger, paymentEntry *models.PaymentEntry, invoiceId int, allocated decimal.Decimal, deductionShare decimal.Decimal) InvoiceOutcome {

	outcome := InvoiceOutcome{
		InvoiceId:       invoiceId,
		AllocatedAmount: allocated,
		DeductionShare:  deductionShare,
	}

	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := AcquireInvoicePostingLock(tx, invoiceId); err != nil {
			return err
		}
		defer ReleaseInvoicePostingLock(tx, invoiceId)

		invoice, err := models.FetchSalesInvoiceForUpdate(ctx, tx, paymentEntry.BusinessId, invoiceId)
		if err != nil {
			return err
		}
		outcome.InvoiceNumber = invoice.InvoiceNumber

		referenceRows, err := models.ListInvoiceReferenceRows(ctx, tx, paymentEntry.ID, invoiceId)
		if err != nil {
			return err
		}

		outcome.TaxShare = TaxAmountFromInvoice(invoice, allocated)
		outcome.NetPaid = utils.Round2(allocated.Sub(deductionShare))
		// The invoice's full tax comes off once per payment, not the apportioned
		// share, so a partial payment still surrenders the whole tax burden.
		outcome.NetContribution = utils.Round2(outcome.NetPaid.Sub(invoice.InvoiceTotalTaxAmount))

		team, err := ResolveSalesTeam(ctx, invoice)
		if err != nil {
			return err
		}

		rowCount, details := ReconcileSalesTeam(invoice, paymentEntry.ID,
			paymentEntry.PostingDate, team, outcome.NetContribution)
		if rowCount == 0 {
			return fmt.Errorf("no sales team rows written for invoice %s", invoice.InvoiceNumber)
		}
		outcome.SalesTeamCount = rowCount
		outcome.SalesPersons = details

		personIds := make([]int, 0, len(details))
		for _, detail := range details {
			personIds = append(personIds, detail.SalesPersonId)
		}
		if names, err := models.GetSalesPersonNames(ctx, personIds); err == nil {
			for i := range details {
				if name, ok := names[details[i].SalesPersonId]; ok {
					details[i].SalesPersonName = &name
				}
			}
		}

		if err := models.ReplaceSalesTeam(ctx, tx, invoice); err != nil {
			return err
		}
		return updateAllocationRows(ctx, tx, invoice, referenceRows, allocated, deductionShare)
	})
	if err != nil {
		config.LogError(logger, "commissionWorkflow.go", "processInvoice",
			"recalculate invoice commission", map[string]interface{}{
				"paymentEntryId": paymentEntry.ID,
				"invoiceId":      invoiceId,
			}, err)
		outcome.Error = err.Error()
	}
	return outcome
}

// updateAllocationRows writes the audit fields back onto each reference row,
// spreading the invoice's deduction share pro rata when the invoice is split
// across several rows.
func updateAllocationRows(ctx context.Context, tx *gorm.DB, invoice *models.SalesInvoice, rows []models.PaymentEntryReference, allocatedTotal decimal.Decimal, deductionShare decimal.Decimal) error {

	for i := range rows {
		row := &rows[i]

		rowDeduction := decimal.Zero
		if allocatedTotal.IsZero() {
			if len(rows) > 0 {
				rowDeduction = utils.Round2(deductionShare.Div(decimal.NewFromInt(int64(len(rows)))))
			}
		} else {
			rowDeduction = utils.Round2(deductionShare.Mul(row.AllocatedAmount).Div(allocatedTotal))
		}

		row.TaxAmountFromAllocated = TaxAmountFromInvoice(invoice, row.AllocatedAmount)
		row.NetWithoutTax = utils.Round2(row.AllocatedAmount.Sub(row.TaxAmountFromAllocated))
		row.NetWithoutTaxWithoutDeductions = utils.Round2(
			row.AllocatedAmount.Sub(row.TaxAmountFromAllocated).Sub(rowDeduction))

		err := tx.WithContext(ctx).Model(&models.PaymentEntryReference{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"tax_amount_from_allocated":          row.TaxAmountFromAllocated,
				"net_without_tax":                    row.NetWithoutTax,
				"net_without_tax_without_deductions": row.NetWithoutTaxWithoutDeductions,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
