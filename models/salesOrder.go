package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/commission_backend/utils"
	"github.com/shopspring/decimal"
)

type SalesOrder struct {
	ID          int              `gorm:"primary_key" json:"id"`
	BusinessId  string           `gorm:"index;not null" json:"business_id" binding:"required"`
	CustomerId  int              `gorm:"index;not null" json:"customer_id" binding:"required"`
	BranchId    int              `gorm:"index;default:null" json:"branch_id"`
	OrderNumber string           `gorm:"size:255;not null" json:"order_number" binding:"required"`
	OrderDate   time.Time        `gorm:"not null" json:"order_date" binding:"required"`
	CurrencyId  int              `gorm:"not null" json:"currency_id"`
	OrderTotal  decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"order_total"`
	SalesTeam   []SalesTeamEntry `gorm:"foreignKey:SalesOrderId" json:"sales_team"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetSalesOrder(ctx context.Context, id int) (*SalesOrder, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[SalesOrder](ctx, businessId, id, "SalesTeam")
}
