package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/erp/costing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCostLayerRepository implements CostLayerRepository using GORM
type GormCostLayerRepository struct {
	db *gorm.DB
}

// NewGormCostLayerRepository creates a new GormCostLayerRepository
func NewGormCostLayerRepository(db *gorm.DB) *GormCostLayerRepository {
	return &GormCostLayerRepository{db: db}
}

// FindByID finds a cost layer by its ID
func (r *GormCostLayerRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostLayer, error) {
	var model models.CostLayerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByProduct returns the product's layers with remaining quantity,
// ordered by acquisition time. Layer ID breaks ties so the order is stable
// for layers acquired at the same instant.
func (r *GormCostLayerRepository) FindActiveByProduct(ctx context.Context, productID uuid.UUID, order costing.LayerOrder) ([]costing.CostLayer, error) {
	direction := "ASC"
	if order == costing.LayerOrderDescending {
		direction = "DESC"
	}

	var modelList []models.CostLayerModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND remaining_quantity > 0", productID).
		Order("acquired_at " + direction).
		Order("id ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	layers := make([]costing.CostLayer, len(modelList))
	for i := range modelList {
		layers[i] = *modelList[i].ToDomain()
	}
	return layers, nil
}

type layerAggregateRow struct {
	TotalQuantity decimal.Decimal
	TotalValue    decimal.Decimal
}

// AggregateActiveByProduct computes total remaining quantity, total remaining
// value and the value-weighted average unit cost over the product's active
// layers. Returns ErrNoInventory when nothing remains.
func (r *GormCostLayerRepository) AggregateActiveByProduct(ctx context.Context, productID uuid.UUID) (costing.LayerAggregate, error) {
	var row layerAggregateRow
	if err := r.db.WithContext(ctx).
		Model(&models.CostLayerModel{}).
		Select("COALESCE(SUM(remaining_quantity), 0) AS total_quantity, COALESCE(SUM(remaining_quantity * unit_cost), 0) AS total_value").
		Where("product_id = ? AND remaining_quantity > 0", productID).
		Scan(&row).Error; err != nil {
		return costing.LayerAggregate{}, err
	}

	if row.TotalQuantity.IsZero() {
		return costing.LayerAggregate{}, costing.ErrNoInventory
	}

	return costing.LayerAggregate{
		TotalQuantity:   row.TotalQuantity,
		TotalValue:      row.TotalValue,
		AverageUnitCost: row.TotalValue.Div(row.TotalQuantity),
	}, nil
}

// ApplyConsumption decrements the remaining quantity of each layer in the
// plan. Every UPDATE is guarded by remaining_quantity >= consumed, so a plan
// built from a snapshot that another writer has since invalidated touches no
// rows; in that case ErrConcurrencyConflict is returned and the surrounding
// transaction rolls back the partial decrements.
func (r *GormCostLayerRepository) ApplyConsumption(ctx context.Context, plan strategy.ConsumptionPlan) error {
	now := time.Now()
	for _, entry := range plan.Entries {
		res := r.db.WithContext(ctx).
			Model(&models.CostLayerModel{}).
			Where("id = ? AND remaining_quantity >= ?", entry.LayerID, entry.Quantity).
			Updates(map[string]interface{}{
				"remaining_quantity": gorm.Expr("remaining_quantity - ?", entry.Quantity),
				"status": gorm.Expr("CASE WHEN remaining_quantity - ? <= 0 THEN ? ELSE ? END",
					entry.Quantity, string(costing.LayerStatusDepleted), string(costing.LayerStatusActive)),
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return costing.ErrConcurrencyConflict
		}
	}
	return nil
}

// Save creates or updates a cost layer
func (r *GormCostLayerRepository) Save(ctx context.Context, layer *costing.CostLayer) error {
	model := models.CostLayerModelFromDomain(layer)
	return r.db.WithContext(ctx).Save(model).Error
}
