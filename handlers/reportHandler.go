package handlers

import (
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/commission_backend/models/reports"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func parseCommissionFilter(c *gin.Context) (reports.SalesCommissionFilter, bool) {

	var filter reports.SalesCommissionFilter

	fromDate, err := time.Parse(dateLayout, c.Query("from_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from_date is required (YYYY-MM-DD)"})
		return filter, false
	}
	toDate, err := time.Parse(dateLayout, c.Query("to_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to_date is required (YYYY-MM-DD)"})
		return filter, false
	}
	filter.FromDate = fromDate
	// inclusive upper bound
	filter.ToDate = toDate.Add(24*time.Hour - time.Nanosecond)

	parseId := func(query string) (*int, bool) {
		raw := c.Query(query)
		if raw == "" {
			return nil, true
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + query})
			return nil, false
		}
		return &value, true
	}

	var ok bool
	if filter.BranchId, ok = parseId("branch_id"); !ok {
		return filter, false
	}
	if filter.CustomerId, ok = parseId("customer_id"); !ok {
		return filter, false
	}
	if filter.SalesPersonId, ok = parseId("sales_person_id"); !ok {
		return filter, false
	}
	return filter, true
}

func SalesCommissionReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := parseCommissionFilter(c)
		if !ok {
			return
		}

		records, err := reports.GetSalesCommissionReport(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func StampDutyCommissionReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := parseCommissionFilter(c)
		if !ok {
			return
		}

		records, err := reports.GetStampDutyCommissionReport(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func SalesCommissionExcelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := parseCommissionFilter(c)
		if !ok {
			return
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=sales-commission.xlsx")
		if err := reports.ExportSalesCommissionExcel(c.Request.Context(), c.Writer, filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
	}
}
