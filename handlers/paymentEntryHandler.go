package handlers

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/commission_backend/config"
	"bitbucket.org/mmdatafocus/commission_backend/models"
	"bitbucket.org/mmdatafocus/commission_backend/utils"
	"bitbucket.org/mmdatafocus/commission_backend/workflow"
	"github.com/gin-gonic/gin"
)

func paymentEntryIdParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment entry id"})
		return 0, false
	}
	return id, true
}

func CreatePaymentEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPaymentEntry
		if err := c.ShouldBindJSON(&input); err != nil {
			bindErrorResponse(c, err)
			return
		}

		ctx := c.Request.Context()
		paymentEntry, err := models.CreatePaymentEntry(ctx, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// The write has committed; a hook failure must not undo it.
		workflow.OnValidatePaymentEntry(ctx, config.GetLogger(), paymentEntry)

		c.JSON(http.StatusCreated, paymentEntry)
	}
}

func GetPaymentEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paymentEntryIdParam(c)
		if !ok {
			return
		}

		paymentEntry, err := models.GetPaymentEntry(c.Request.Context(), id)
		if err == utils.ErrorRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment entry not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, paymentEntry)
	}
}

func SubmitPaymentEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paymentEntryIdParam(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		paymentEntry, err := models.SetPaymentEntryDocstatus(ctx, id, models.DocstatusSubmitted)
		if err == utils.ErrorRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment entry not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		workflow.OnSubmitPaymentEntry(ctx, config.GetLogger(), paymentEntry)

		c.JSON(http.StatusOK, paymentEntry)
	}
}

func CancelPaymentEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paymentEntryIdParam(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		paymentEntry, err := models.SetPaymentEntryDocstatus(ctx, id, models.DocstatusCancelled)
		if err == utils.ErrorRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment entry not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		workflow.OnCancelPaymentEntry(ctx, config.GetLogger(), paymentEntry)

		c.JSON(http.StatusOK, paymentEntry)
	}
}

// CalculateNetContributionHandler triggers the recalculation directly. Unlike
// the lifecycle hooks, errors here come back to the caller.
func CalculateNetContributionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paymentEntryIdParam(c)
		if !ok {
			return
		}

		result, err := workflow.CalculateNetContribution(c.Request.Context(), config.GetLogger(), id)
		if err == utils.ErrorRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment entry not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
