package persistence

import (
	"context"
	"errors"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCostingConfigRepository implements CostingConfigRepository using GORM
type GormCostingConfigRepository struct {
	db *gorm.DB
}

// NewGormCostingConfigRepository creates a new GormCostingConfigRepository
func NewGormCostingConfigRepository(db *gorm.DB) *GormCostingConfigRepository {
	return &GormCostingConfigRepository{db: db}
}

// FindByProduct returns the costing configuration for a product
func (r *GormCostingConfigRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*costing.CostingConfig, error) {
	var model models.CostingConfigModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts a product's costing configuration. A product has at most one
// config row, keyed by product_id.
func (r *GormCostingConfigRepository) Save(ctx context.Context, config *costing.CostingConfig) error {
	model := &models.CostingConfigModel{}
	model.FromDomain(config)

	res := r.db.WithContext(ctx).Model(&models.CostingConfigModel{}).
		Where("product_id = ?", config.ProductID).
		Update("method", model.Method)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"method", "updated_at"}),
		}).
		Create(model).Error
}
