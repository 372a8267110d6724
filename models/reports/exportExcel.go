package reports

import (
	"context"
	"fmt"
	"io"

	"bitbucket.org/mmdatafocus/commission_backend/utils"
	"github.com/xuri/excelize/v2"
)

// ExportSalesCommissionExcel writes the sales commission report as an xlsx
// workbook onto w. The caller owns the response headers.
func ExportSalesCommissionExcel(ctx context.Context, w io.Writer, filter SalesCommissionFilter) error {

	data, err := GetSalesCommissionReport(ctx, filter)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	// Add headers
	headings := []string{
		"InvoiceNumber", "InvoiceDate", "CustomerName", "GrandTotal", "TotalTaxes",
		"SubtotalWithoutVat", "TotalAllocated", "TotalPaid", "PaymentCount",
		"PaymentModes", "ReferenceDates", "SalesPersonName", "CommissionRate",
		"TotalIncentives",
	}
	col := 'A'
	for _, h := range headings {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}

	// Add data
	for i, d := range data {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+row, d.InvoiceNumber)
		f.SetCellValue(sheetName, "B"+row, d.InvoiceDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, "C"+row, utils.DereferencePtr(d.CustomerName, ""))
		f.SetCellValue(sheetName, "D"+row, d.GrandTotal.InexactFloat64())
		f.SetCellValue(sheetName, "E"+row, d.TotalTaxes.InexactFloat64())
		f.SetCellValue(sheetName, "F"+row, d.SubtotalWithoutVat.InexactFloat64())
		f.SetCellValue(sheetName, "G"+row, d.TotalAllocated.InexactFloat64())
		f.SetCellValue(sheetName, "H"+row, d.TotalPaid.InexactFloat64())
		f.SetCellValue(sheetName, "I"+row, d.PaymentCount)
		f.SetCellValue(sheetName, "J"+row, utils.DereferencePtr(d.PaymentModes, ""))
		f.SetCellValue(sheetName, "K"+row, utils.DereferencePtr(d.ReferenceDates, ""))
		f.SetCellValue(sheetName, "L"+row, utils.DereferencePtr(d.SalesPersonName, ""))
		f.SetCellValue(sheetName, "M"+row, d.CommissionRate.InexactFloat64())
		f.SetCellValue(sheetName, "N"+row, d.TotalIncentives.InexactFloat64())
	}

	return f.Write(w)
}
