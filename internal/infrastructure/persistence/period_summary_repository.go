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

// GormPeriodSummaryRepository implements PeriodSummaryRepository using GORM
type GormPeriodSummaryRepository struct {
	db *gorm.DB
}

// NewGormPeriodSummaryRepository creates a new GormPeriodSummaryRepository
func NewGormPeriodSummaryRepository(db *gorm.DB) *GormPeriodSummaryRepository {
	return &GormPeriodSummaryRepository{db: db}
}

// FindByProductAndPeriod returns the summary row for a product and month bucket
func (r *GormPeriodSummaryRepository) FindByProductAndPeriod(ctx context.Context, productID uuid.UUID, period string) (*costing.CogsPeriodSummary, error) {
	var model models.CogsPeriodSummaryModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND period = ?", productID, period).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProduct returns all summaries for a product ordered by period
func (r *GormPeriodSummaryRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]costing.CogsPeriodSummary, error) {
	var modelList []models.CogsPeriodSummaryModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("period ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	summaries := make([]costing.CogsPeriodSummary, len(modelList))
	for i := range modelList {
		summaries[i] = *modelList[i].ToDomain()
	}
	return summaries, nil
}

// Save upserts a summary row keyed by (product_id, period)
func (r *GormPeriodSummaryRepository) Save(ctx context.Context, summary *costing.CogsPeriodSummary) error {
	model := &models.CogsPeriodSummaryModel{}
	model.FromDomain(summary)

	res := r.db.WithContext(ctx).Model(&models.CogsPeriodSummaryModel{}).
		Where("product_id = ? AND period = ?", summary.ProductID, summary.Period).
		Updates(map[string]interface{}{
			"quantity_sold": model.QuantitySold,
			"total_cogs":    model.TotalCogs,
			"record_count":  model.RecordCount,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// first write for this bucket; the conflict clause only guards the
	// concurrent-create race
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "period"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity_sold", "total_cogs", "record_count", "updated_at"}),
		}).
		Create(model).Error
}

// DeleteByProduct removes all of a product's summary rows before a rebuild
func (r *GormPeriodSummaryRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.CogsPeriodSummaryModel{}).Error
}
