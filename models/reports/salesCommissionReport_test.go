package reports

import (
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/commission_backend/utils"
)

// The report must expose the paid total per invoice, the invoice subtotal net
// of VAT, and the payments' reference dates, alongside the allocated total.
func TestSalesCommissionReportColumns(t *testing.T) {

	sql, err := utils.ExecTemplate(salesCommissionSQLTemplate, map[string]interface{}{
		"branchId":      0,
		"customerId":    0,
		"salesPersonId": 0,
	})
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	wantColumns := []string{
		"PaymentTotals.totalPaid AS total_paid",
		"si.invoice_total_amount - si.invoice_total_tax_amount AS subtotal_without_vat",
		"PaymentTotals.referenceDates AS reference_dates",
		"Payments.totalAllocated AS total_allocated",
	}
	for _, col := range wantColumns {
		if !strings.Contains(sql, col) {
			t.Fatalf("rendered sql is missing %q", col)
		}
	}

	// The paid sum must come from one row per payment, so a payment with two
	// reference rows on the same invoice is not counted twice.
	if !strings.Contains(sql, "SELECT DISTINCT") {
		t.Fatalf("rendered sql does not deduplicate payments before summing paid_amount")
	}
	if !strings.Contains(sql, "SUM(paid_amount) AS totalPaid") {
		t.Fatalf("rendered sql does not sum paid_amount")
	}
}

func TestSalesCommissionReportOptionalFilters(t *testing.T) {

	cases := []struct {
		name   string
		data   map[string]interface{}
		clause string
		want   bool
	}{
		{"no branch filter", map[string]interface{}{"branchId": 0, "customerId": 0, "salesPersonId": 0}, "AND si.branch_id = @branchId", false},
		{"branch filter", map[string]interface{}{"branchId": 3, "customerId": 0, "salesPersonId": 0}, "AND si.branch_id = @branchId", true},
		{"customer filter", map[string]interface{}{"branchId": 0, "customerId": 7, "salesPersonId": 0}, "AND si.customer_id = @customerId", true},
		{"sales person filter", map[string]interface{}{"branchId": 0, "customerId": 0, "salesPersonId": 2}, "AND ste.sales_person_id = @salesPersonId", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sql, err := utils.ExecTemplate(salesCommissionSQLTemplate, tc.data)
			if err != nil {
				t.Fatalf("render template: %v", err)
			}
			if got := strings.Contains(sql, tc.clause); got != tc.want {
				t.Fatalf("clause %q present = %v, want %v", tc.clause, got, tc.want)
			}
		})
	}
}
