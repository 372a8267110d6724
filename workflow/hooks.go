package workflow

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/commission_backend/config"
	"bitbucket.org/mmdatafocus/commission_backend/models"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Lifecycle hooks. These run as side effects of document operations and must
// never make the operation itself fail: every error is logged and swallowed.

const hookLockTTL = 30 * time.Second

func paymentLockKey(paymentEntryId int) string {
	return fmt.Sprintf("commission:payment:%d", paymentEntryId)
}

// OnValidatePaymentEntry recomputes commissions when a Receive payment entry
// is saved, so drafts already show the figures the submit will produce.
func OnValidatePaymentEntry(ctx context.Context, logger *logrus.Logger, paymentEntry *models.PaymentEntry) {

	if paymentEntry.PaymentType != models.PaymentTypeReceive {
		return
	}
	runGuardedCalculation(ctx, logger, "OnValidatePaymentEntry", paymentEntry.ID)
}

// OnSubmitPaymentEntry recomputes commissions when a Receive payment entry is
// submitted. Submission itself has already succeeded by the time this runs.
func OnSubmitPaymentEntry(ctx context.Context, logger *logrus.Logger, paymentEntry *models.PaymentEntry) {

	if paymentEntry.PaymentType != models.PaymentTypeReceive {
		return
	}
	runGuardedCalculation(ctx, logger, "OnSubmitPaymentEntry", paymentEntry.ID)
}

// runGuardedCalculation takes a short redis lock per payment so overlapping
// hook firings (a save racing a submit) do not recalculate concurrently. A
// held lock means another run is already doing the same work; skip quietly.
func runGuardedCalculation(ctx context.Context, logger *logrus.Logger, hookName string, paymentEntryId int) {

	locker := config.GetRedisLock()
	lock, err := locker.Obtain(config.GetRedisContext(), paymentLockKey(paymentEntryId), hookLockTTL, nil)
	if err == redislock.ErrNotObtained {
		logger.WithFields(logrus.Fields{
			"hook":           hookName,
			"paymentEntryId": paymentEntryId,
		}).Info("recalculation already in progress, skipping")
		return
	}
	if err != nil {
		config.LogError(logger, "hooks.go", hookName, "obtain recalculation lock",
			map[string]interface{}{"paymentEntryId": paymentEntryId}, err)
		return
	}
	defer lock.Release(config.GetRedisContext())

	if _, err := CalculateNetContribution(ctx, logger, paymentEntryId); err != nil {
		config.LogError(logger, "hooks.go", hookName, "recalculate net contribution",
			map[string]interface{}{"paymentEntryId": paymentEntryId}, err)
	}
}

// OnCancelPaymentEntry removes the sales team rows this payment wrote onto its
// invoices. Rows written by other payments, and template rows, stay. Each
// invoice is cleaned in its own transaction; one failure does not stop the rest.
func OnCancelPaymentEntry(ctx context.Context, logger *logrus.Logger, paymentEntry *models.PaymentEntry) {

	if paymentEntry.PaymentType != models.PaymentTypeReceive {
		return
	}

	analysis := AnalyzeReferences(paymentEntry)
	db := config.GetDB()

	for _, invoiceId := range analysis.SortedInvoiceIds() {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := AcquireInvoicePostingLock(tx, invoiceId); err != nil {
				return err
			}
			defer ReleaseInvoicePostingLock(tx, invoiceId)

			invoice, err := models.FetchSalesInvoiceForUpdate(ctx, tx, paymentEntry.BusinessId, invoiceId)
			if err != nil {
				return err
			}
			if removed := RemoveSalesTeamForPayment(invoice, paymentEntry.ID); removed == 0 {
				return nil
			}
			return models.ReplaceSalesTeam(ctx, tx, invoice)
		})
		if err != nil {
			config.LogError(logger, "hooks.go", "OnCancelPaymentEntry", "remove payment sales team rows",
				map[string]interface{}{
					"paymentEntryId": paymentEntry.ID,
					"invoiceId":      invoiceId,
				}, err)
		}
	}
}
