package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/commission_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SalesInvoice struct {
	ID                    int                  `gorm:"primary_key" json:"id"`
	BusinessId            string               `gorm:"index;not null" json:"business_id" binding:"required"`
	CustomerId            int                  `gorm:"index;not null" json:"customer_id" binding:"required"`
	BranchId              int                  `gorm:"index;default:null" json:"branch_id"`
	InvoiceNumber         string               `gorm:"size:255;not null" json:"invoice_number" binding:"required"`
	InvoiceDate           time.Time            `gorm:"not null" json:"invoice_date" binding:"required"`
	CurrencyId            int                  `gorm:"not null" json:"currency_id"`
	InvoiceTotalTaxAmount decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"invoice_total_tax_amount"`
	InvoiceTotalAmount    decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"invoice_total_amount"`
	Docstatus             Docstatus            `gorm:"not null;default:0" json:"docstatus"`
	Details               []SalesInvoiceDetail `gorm:"foreignKey:SalesInvoiceId" json:"details"`
	SalesTeam             []SalesTeamEntry     `gorm:"foreignKey:SalesInvoiceId" json:"sales_team"`
	CreatedAt             time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type SalesInvoiceDetail struct {
	ID             int             `gorm:"primary_key" json:"id"`
	SalesInvoiceId int             `gorm:"index;not null" json:"sales_invoice_id"`
	SalesOrderId   int             `gorm:"index;default:null" json:"sales_order_id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	DetailQty      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"detail_qty"`
	DetailAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"detail_amount"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetSalesInvoice(ctx context.Context, id int) (*SalesInvoice, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[SalesInvoice](ctx, businessId, id, "Details", "SalesTeam")
}

// FetchSalesInvoiceForUpdate loads an invoice with its children inside the
// caller's transaction, so the subsequent sales-team write sees a consistent row set.
func FetchSalesInvoiceForUpdate(ctx context.Context, tx *gorm.DB, businessId string, id int) (*SalesInvoice, error) {

	var result SalesInvoice
	err := tx.WithContext(ctx).
		Where("business_id = ?", businessId).
		Preload("Details").
		Preload("SalesTeam").
		First(&result, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

// FirstSalesOrderId returns the first sales order referenced by the invoice
// details, or 0 when the invoice was not billed from an order. Later details'
// orders are ignored on purpose.
func (inv *SalesInvoice) FirstSalesOrderId() int {
	for _, detail := range inv.Details {
		if detail.SalesOrderId != 0 {
			return detail.SalesOrderId
		}
	}
	return 0
}
