package workflow

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// AcquireInvoicePostingLock serializes recalculation per invoice across
// instances using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, not transaction-scoped, so every
// acquire must be paired with a release on the same *gorm.DB session before
// the connection goes back to the pool.
func AcquireInvoicePostingLock(tx *gorm.DB, invoiceId int) error {

	lockName := fmt.Sprintf("commission:invoice:%d", invoiceId)
	var acquired int
	err := tx.Raw("SELECT GET_LOCK(?, 10)", lockName).Scan(&acquired).Error
	if err != nil {
		return err
	}
	if acquired != 1 {
		return errors.New("could not acquire invoice posting lock: " + lockName)
	}
	return nil
}

func ReleaseInvoicePostingLock(tx *gorm.DB, invoiceId int) {
	lockName := fmt.Sprintf("commission:invoice:%d", invoiceId)
	var ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&ok).Error
}
