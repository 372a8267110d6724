package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/commission_backend/config"
	"bitbucket.org/mmdatafocus/commission_backend/utils"
)

type SalesPerson struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id" binding:"required"`
	Name       string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email      string    `gorm:"size:100" json:"email"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSalesPerson struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
}

func CreateSalesPerson(ctx context.Context, input *NewSalesPerson) (*SalesPerson, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	salesPerson := SalesPerson{
		Name:       input.Name,
		BusinessId: businessId,
		Email:      input.Email,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&salesPerson).Error
	if err != nil {
		return nil, err
	}
	return &salesPerson, nil
}

func GetSalesPerson(ctx context.Context, id int) (*SalesPerson, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[SalesPerson](ctx, businessId, id)
}

// GetSalesPersonNames resolves display names for a set of sales person ids in one query.
func GetSalesPersonNames(ctx context.Context, ids []int) (map[int]string, error) {

	names := make(map[int]string)
	if len(ids) == 0 {
		return names, nil
	}
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*SalesPerson
	err := db.WithContext(ctx).
		Where("business_id = ? AND id IN ?", businessId, ids).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	for _, sp := range results {
		names[sp.ID] = sp.Name
	}
	return names, nil
}

func GetSalesPersons(ctx context.Context, name *string) ([]*SalesPerson, error) {

	db := config.GetDB()
	var results []*SalesPerson

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
