package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/commission_backend/config"
	"bitbucket.org/mmdatafocus/commission_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentEntry struct {
	ID                   int                     `gorm:"primary_key" json:"id"`
	BusinessId           string                  `gorm:"index;not null" json:"business_id" binding:"required"`
	PaymentType          PaymentType             `gorm:"type:enum('Receive', 'Pay');not null" json:"payment_type" binding:"required"`
	CustomerId           int                     `gorm:"index;not null" json:"customer_id" binding:"required"`
	BranchId             int                     `gorm:"index;default:null" json:"branch_id"`
	CurrencyId           int                     `gorm:"index;not null" json:"currency_id" binding:"required"`
	PaymentNumber        string                  `gorm:"size:255;not null" json:"payment_number"`
	PostingDate          time.Time               `gorm:"not null" json:"posting_date" binding:"required"`
	PaidAmount           decimal.Decimal         `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	TotalAllocatedAmount decimal.Decimal         `gorm:"type:decimal(20,4);default:0" json:"total_allocated_amount"`
	ModeOfPayment        string                  `gorm:"size:100;default:null" json:"mode_of_payment"`
	ReferenceNumber      string                  `gorm:"size:255;default:null" json:"reference_number"`
	ReferenceDate        *time.Time              `gorm:"default:null" json:"reference_date"`
	Notes                string                  `gorm:"type:text;default:null" json:"notes"`
	Docstatus            Docstatus               `gorm:"not null;default:0" json:"docstatus"`
	References           []PaymentEntryReference `gorm:"foreignKey:PaymentEntryId" json:"references"`
	Deductions           []PaymentEntryDeduction `gorm:"foreignKey:PaymentEntryId" json:"deductions"`
	CreatedAt            time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

// PaymentEntryReference designates how much of the payment applies to one
// referenced document. The three derived fields are audit values written back
// by the commission recalculation (persisted field contract).
type PaymentEntryReference struct {
	ID                             int             `gorm:"primary_key" json:"id"`
	PaymentEntryId                 int             `gorm:"index;not null" json:"payment_entry_id"`
	ReferenceType                  ReferenceType   `gorm:"type:enum('Sales Invoice', 'Sales Order');not null" json:"reference_type"`
	ReferenceId                    int             `gorm:"index;not null" json:"reference_id"`
	AllocatedAmount                decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"allocated_amount"`
	TaxAmountFromAllocated         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount_from_allocated"`
	NetWithoutTax                  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_without_tax"`
	NetWithoutTaxWithoutDeductions decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_without_tax_without_deductions"`
	CreatedAt                      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type PaymentEntryDeduction struct {
	ID             int             `gorm:"primary_key" json:"id"`
	PaymentEntryId int             `gorm:"index;not null" json:"payment_entry_id"`
	AccountId      int             `gorm:"default:null" json:"account_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Description    string          `gorm:"size:255;default:null" json:"description"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPaymentEntry struct {
	PaymentType     PaymentType                `json:"payment_type" binding:"required"`
	CustomerId      int                        `json:"customer_id" binding:"required"`
	BranchId        int                        `json:"branch_id"`
	CurrencyId      int                        `json:"currency_id" binding:"required"`
	PostingDate     time.Time                  `json:"posting_date" binding:"required"`
	PaidAmount      decimal.Decimal            `json:"paid_amount"`
	ModeOfPayment   string                     `json:"mode_of_payment"`
	ReferenceNumber string                     `json:"reference_number"`
	ReferenceDate   *time.Time                 `json:"reference_date"`
	Notes           string                     `json:"notes"`
	References      []NewPaymentEntryReference `json:"references"`
	Deductions      []NewPaymentEntryDeduction `json:"deductions"`
}

type NewPaymentEntryReference struct {
	ReferenceType   ReferenceType   `json:"reference_type" binding:"required"`
	ReferenceId     int             `json:"reference_id" binding:"required"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount" binding:"required"`
}

type NewPaymentEntryDeduction struct {
	AccountId   int             `json:"account_id"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// TotalDeductions sums the deduction child rows to a single scalar.
func (pe *PaymentEntry) TotalDeductions() decimal.Decimal {
	total := decimal.Zero
	for _, deduction := range pe.Deductions {
		total = total.Add(deduction.Amount)
	}
	return total
}

func (input *NewPaymentEntry) validate(ctx context.Context, businessId string) error {

	// exists customer
	if err := utils.ValidateResourceId[Customer](ctx, businessId, input.CustomerId); err != nil {
		return errors.New("customer not found")
	}
	for _, ref := range input.References {
		if ref.ReferenceType == ReferenceTypeSalesInvoice {
			if err := utils.ValidateResourceId[SalesInvoice](ctx, businessId, ref.ReferenceId); err != nil {
				return fmt.Errorf("sales invoice %d not found", ref.ReferenceId)
			}
		}
	}
	return nil
}

func CreatePaymentEntry(ctx context.Context, input *NewPaymentEntry) (*PaymentEntry, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	totalAllocated := decimal.Zero
	references := make([]PaymentEntryReference, 0, len(input.References))
	for _, ref := range input.References {
		references = append(references, PaymentEntryReference{
			ReferenceType:   ref.ReferenceType,
			ReferenceId:     ref.ReferenceId,
			AllocatedAmount: ref.AllocatedAmount,
		})
		totalAllocated = totalAllocated.Add(ref.AllocatedAmount)
	}
	deductions := make([]PaymentEntryDeduction, 0, len(input.Deductions))
	for _, ded := range input.Deductions {
		deductions = append(deductions, PaymentEntryDeduction{
			AccountId:   ded.AccountId,
			Amount:      ded.Amount,
			Description: ded.Description,
		})
	}

	paymentEntry := PaymentEntry{
		BusinessId:           businessId,
		PaymentType:          input.PaymentType,
		CustomerId:           input.CustomerId,
		BranchId:             input.BranchId,
		CurrencyId:           input.CurrencyId,
		PostingDate:          input.PostingDate,
		PaidAmount:           input.PaidAmount,
		TotalAllocatedAmount: totalAllocated,
		ModeOfPayment:        input.ModeOfPayment,
		ReferenceNumber:      input.ReferenceNumber,
		ReferenceDate:        input.ReferenceDate,
		Notes:                input.Notes,
		References:           references,
		Deductions:           deductions,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&paymentEntry).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	paymentEntry.PaymentNumber = fmt.Sprintf("PE-%06d", paymentEntry.ID)
	if err := tx.WithContext(ctx).Model(&PaymentEntry{}).
		Where("id = ?", paymentEntry.ID).
		Update("payment_number", paymentEntry.PaymentNumber).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &paymentEntry, nil
}

func GetPaymentEntry(ctx context.Context, id int) (*PaymentEntry, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[PaymentEntry](ctx, businessId, id, "References", "Deductions")
}

// SetPaymentEntryDocstatus moves a payment entry through its lifecycle.
// Draft -> Submitted -> Cancelled only; no other transition is legal.
func SetPaymentEntryDocstatus(ctx context.Context, id int, status Docstatus) (*PaymentEntry, error) {

	paymentEntry, err := GetPaymentEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	switch status {
	case DocstatusSubmitted:
		if paymentEntry.Docstatus != DocstatusDraft {
			return nil, errors.New("only draft payment entries can be submitted")
		}
	case DocstatusCancelled:
		if paymentEntry.Docstatus != DocstatusSubmitted {
			return nil, errors.New("only submitted payment entries can be cancelled")
		}
	default:
		return nil, errors.New("invalid docstatus transition")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&PaymentEntry{}).
		Where("id = ?", id).
		Update("docstatus", status).Error
	if err != nil {
		return nil, err
	}
	paymentEntry.Docstatus = status
	return paymentEntry, nil
}

// ListInvoiceReferenceRows returns the payment's allocation rows pointing at
// one invoice, in row order. The same invoice may appear on several rows.
func ListInvoiceReferenceRows(ctx context.Context, tx *gorm.DB, paymentEntryId int, invoiceId int) ([]PaymentEntryReference, error) {

	var rows []PaymentEntryReference
	err := tx.WithContext(ctx).
		Where("payment_entry_id = ? AND reference_type = ? AND reference_id = ?",
			paymentEntryId, ReferenceTypeSalesInvoice, invoiceId).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
