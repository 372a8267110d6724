package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesTeamEntry is a child row carried by a sales invoice, a sales order or a
// customer. Order and customer rows are templates; invoice rows either inherit
// from a template or are payment-specific.
//
// Provenance: a row with PaymentEntryId != 0 was produced by the commission
// recalculation for that payment entry and is reconciled in place when the same
// payment is reprocessed. A row with PaymentEntryId == 0 is a template row and
// is replaced, not edited, the first time a payment touches the invoice.
type SalesTeamEntry struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	BusinessId          string          `gorm:"index;not null" json:"business_id"`
	SalesInvoiceId      int             `gorm:"index;default:null" json:"sales_invoice_id"`
	SalesOrderId        int             `gorm:"index;default:null" json:"sales_order_id"`
	CustomerId          int             `gorm:"index;default:null" json:"customer_id"`
	SalesPersonId       int             `gorm:"index;not null" json:"sales_person_id"`
	CommissionRate      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"commission_rate"`
	AllocatedPercentage decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"allocated_percentage"`
	Incentives          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"incentives"`
	PaymentEntryId      int             `gorm:"index;default:null" json:"payment_entry_id"`
	CalculationDate     *time.Time      `gorm:"default:null" json:"calculation_date"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// ReplaceSalesTeam persists the invoice's in-memory sales team as the full row
// set: rows dropped during reconciliation are deleted, surviving rows are
// upserted. Must run inside the caller's transaction.
func ReplaceSalesTeam(ctx context.Context, tx *gorm.DB, invoice *SalesInvoice) error {

	keptIds := make([]int, 0, len(invoice.SalesTeam))
	for _, row := range invoice.SalesTeam {
		if row.ID != 0 {
			keptIds = append(keptIds, row.ID)
		}
	}

	dbCtx := tx.WithContext(ctx).Where("sales_invoice_id = ?", invoice.ID)
	if len(keptIds) > 0 {
		dbCtx = dbCtx.Where("id NOT IN ?", keptIds)
	}
	if err := dbCtx.Delete(&SalesTeamEntry{}).Error; err != nil {
		return err
	}

	for i := range invoice.SalesTeam {
		row := &invoice.SalesTeam[i]
		row.BusinessId = invoice.BusinessId
		row.SalesInvoiceId = invoice.ID
		if err := tx.WithContext(ctx).Save(row).Error; err != nil {
			return err
		}
	}
	return nil
}
