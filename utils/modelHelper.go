package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/commission_backend/config"
)

// fetch model from db by id within the business scope.
// (ctx's business_id is used in query's WHERE)
func FetchModel[T any](ctx context.Context, businessId string, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		return nil, ErrorRecordNotFound
	}
	return &result, nil
}

// exists check for a foreign key within the business scope
func ValidateResourceId[T any](ctx context.Context, businessId string, id int) error {
	db := config.GetDB()
	var count int64
	var model T
	err := db.WithContext(ctx).Model(&model).
		Where("business_id = ? AND id = ?", businessId, id).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrorRecordNotFound
	}
	return nil
}
