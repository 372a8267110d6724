package reports

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/commission_backend/config"
	"bitbucket.org/mmdatafocus/commission_backend/utils"
	"github.com/shopspring/decimal"
)

type SalesCommissionFilter struct {
	FromDate      time.Time
	ToDate        time.Time
	BranchId      *int
	CustomerId    *int
	SalesPersonId *int
}

type SalesCommissionRow struct {
	SalesInvoiceId     int             `json:"sales_invoice_id"`
	InvoiceNumber      string          `json:"invoice_number"`
	InvoiceDate        time.Time       `json:"invoice_date"`
	CustomerId         int             `json:"customer_id"`
	CustomerName       *string         `json:"customer_name,omitempty"`
	BranchId           int             `json:"branch_id"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
	TotalTaxes         decimal.Decimal `json:"total_taxes"`
	SubtotalWithoutVat decimal.Decimal `json:"subtotal_without_vat"`
	TotalAllocated     decimal.Decimal `json:"total_allocated"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	PaymentCount       int             `json:"payment_count"`
	PaymentModes       *string         `json:"payment_modes,omitempty"`
	PaymentNumbers     *string         `json:"payment_numbers,omitempty"`
	ReferenceDates     *string         `json:"reference_dates,omitempty"`
	SalesPersonId      int             `json:"sales_person_id"`
	SalesPersonName    *string         `json:"sales_person_name,omitempty"`
	CommissionRate     decimal.Decimal `json:"commission_rate"`
	TotalIncentives    decimal.Decimal `json:"total_incentives"`
}

// totalPaid sums each payment's full paid amount once per invoice, so a
// payment split across several reference rows of the same invoice is not
// counted twice; totalAllocated keeps summing the rows themselves.
const salesCommissionSQLTemplate = `
WITH Payments AS (
    SELECT
        per.reference_id AS invoice_id,
        SUM(per.allocated_amount) AS totalAllocated,
        COUNT(DISTINCT pe.id) AS paymentCount,
        GROUP_CONCAT(DISTINCT pe.mode_of_payment SEPARATOR ', ') AS paymentModes,
        GROUP_CONCAT(DISTINCT pe.payment_number SEPARATOR ', ') AS paymentNumbers
    FROM
        payment_entry_references per
        JOIN payment_entries pe ON pe.id = per.payment_entry_id
    WHERE
        pe.business_id = @businessId
        AND pe.payment_type = 'Receive'
        AND pe.docstatus = 1
        AND per.reference_type = 'Sales Invoice'
    GROUP BY
        per.reference_id
),
PaymentTotals AS (
    SELECT
        invoice_id,
        SUM(paid_amount) AS totalPaid,
        GROUP_CONCAT(DISTINCT DATE_FORMAT(reference_date, '%Y-%m-%d') SEPARATOR ', ') AS referenceDates
    FROM (
        SELECT DISTINCT
            per.reference_id AS invoice_id,
            pe.id AS payment_id,
            pe.paid_amount,
            pe.reference_date
        FROM
            payment_entry_references per
            JOIN payment_entries pe ON pe.id = per.payment_entry_id
        WHERE
            pe.business_id = @businessId
            AND pe.payment_type = 'Receive'
            AND pe.docstatus = 1
            AND per.reference_type = 'Sales Invoice'
    ) dp
    GROUP BY
        invoice_id
),
FirstTeamRow AS (
    SELECT
        sales_invoice_id,
        MIN(id) AS firstRowId,
        SUM(incentives) AS totalIncentives
    FROM
        sales_team_entries
    WHERE
        business_id = @businessId
        AND sales_invoice_id IS NOT NULL
        AND payment_entry_id IS NOT NULL
    GROUP BY
        sales_invoice_id
)
SELECT
    si.id AS sales_invoice_id,
    si.invoice_number,
    si.invoice_date,
    si.customer_id,
    customers.name AS customer_name,
    si.branch_id,
    si.invoice_total_amount AS grand_total,
    si.invoice_total_tax_amount AS total_taxes,
    si.invoice_total_amount - si.invoice_total_tax_amount AS subtotal_without_vat,
    Payments.totalAllocated AS total_allocated,
    PaymentTotals.totalPaid AS total_paid,
    Payments.paymentCount AS payment_count,
    Payments.paymentModes AS payment_modes,
    Payments.paymentNumbers AS payment_numbers,
    PaymentTotals.referenceDates AS reference_dates,
    ste.sales_person_id,
    sales_people.name AS sales_person_name,
    ste.commission_rate,
    FirstTeamRow.totalIncentives AS total_incentives
FROM
    sales_invoices si
    JOIN Payments ON Payments.invoice_id = si.id
    JOIN PaymentTotals ON PaymentTotals.invoice_id = si.id
    JOIN FirstTeamRow ON FirstTeamRow.sales_invoice_id = si.id
    JOIN sales_team_entries ste ON ste.id = FirstTeamRow.firstRowId
    LEFT JOIN sales_people ON sales_people.id = ste.sales_person_id
    LEFT JOIN customers ON customers.id = si.customer_id
WHERE
    si.business_id = @businessId
    AND si.docstatus = 1
    AND si.invoice_date BETWEEN @fromDate AND @toDate
   {{- if .branchId }} AND si.branch_id = @branchId {{- end }}
   {{- if .customerId }} AND si.customer_id = @customerId {{- end }}
   {{- if .salesPersonId }} AND ste.sales_person_id = @salesPersonId {{- end }}
ORDER BY
    si.invoice_date, si.id
`

// do more checking for reports not filtering businessId
func GetSalesCommissionReport(ctx context.Context, filter SalesCommissionFilter) ([]*SalesCommissionRow, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	// generating sql from template
	sql, err := utils.ExecTemplate(salesCommissionSQLTemplate, map[string]interface{}{
		"branchId":      utils.DereferencePtr(filter.BranchId),
		"customerId":    utils.DereferencePtr(filter.CustomerId),
		"salesPersonId": utils.DereferencePtr(filter.SalesPersonId),
	})
	if err != nil {
		return nil, err
	}

	var records []*SalesCommissionRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"businessId":    businessId,
		"fromDate":      filter.FromDate,
		"toDate":        filter.ToDate,
		"branchId":      filter.BranchId,
		"customerId":    filter.CustomerId,
		"salesPersonId": filter.SalesPersonId,
	}).Scan(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}
