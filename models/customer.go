package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/commission_backend/config"
	"bitbucket.org/mmdatafocus/commission_backend/utils"
)

type Customer struct {
	ID         int              `gorm:"primary_key" json:"id"`
	BusinessId string           `gorm:"index;not null" json:"business_id" binding:"required"`
	Name       string           `gorm:"size:100;not null" json:"name" binding:"required"`
	Email      string           `gorm:"size:100" json:"email"`
	Phone      string           `gorm:"size:20" json:"phone"`
	IsActive   *bool            `gorm:"not null;default:true" json:"is_active"`
	SalesTeam  []SalesTeamEntry `gorm:"foreignKey:CustomerId" json:"sales_team"`
	CreatedAt  time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name      string           `json:"name" binding:"required"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
	SalesTeam []SalesTeamEntry `json:"sales_team"`
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	customer := Customer{
		BusinessId: businessId,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		SalesTeam:  input.SalesTeam,
	}
	for i := range customer.SalesTeam {
		customer.SalesTeam[i].BusinessId = businessId
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Customer](ctx, businessId, id, "SalesTeam")
}
