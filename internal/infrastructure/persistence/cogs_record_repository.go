package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCogsRecordRepository implements CogsRecordRepository using GORM
type GormCogsRecordRepository struct {
	db *gorm.DB
}

// NewGormCogsRecordRepository creates a new GormCogsRecordRepository
func NewGormCogsRecordRepository(db *gorm.DB) *GormCogsRecordRepository {
	return &GormCogsRecordRepository{db: db}
}

// FindByID finds a COGS record by its ID
func (r *GormCogsRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CogsRecord, error) {
	var model models.CogsRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByProduct returns a product's COGS records, paginated
func (r *GormCogsRecordRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]costing.CogsRecord, error) {
	var modelList []models.CogsRecordModel
	query := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order(orderClause(filter)).
		Offset(filter.Offset()).
		Limit(filter.Limit())

	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainRecords(modelList)
}

// FindByProductAndPeriod returns all records whose created_at falls within
// the month bucket, oldest first. Periods bucket by UTC month.
func (r *GormCogsRecordRepository) FindByProductAndPeriod(ctx context.Context, productID uuid.UUID, period string) ([]costing.CogsRecord, error) {
	start, err := costing.PeriodStart(period)
	if err != nil {
		return nil, err
	}
	end := start.AddDate(0, 1, 0)

	var modelList []models.CogsRecordModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND created_at >= ? AND created_at < ?", productID, start, end).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainRecords(modelList)
}

// ListPeriods returns the distinct month buckets the product has records in,
// oldest first
func (r *GormCogsRecordRepository) ListPeriods(ctx context.Context, productID uuid.UUID) ([]string, error) {
	var periods []string
	if err := r.db.WithContext(ctx).
		Model(&models.CogsRecordModel{}).
		Select("DISTINCT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') AS period").
		Where("product_id = ?", productID).
		Order("period ASC").
		Pluck("period", &periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// Save inserts a new COGS record. Records are append-only; there is no update path.
func (r *GormCogsRecordRepository) Save(ctx context.Context, record *costing.CogsRecord) error {
	model := &models.CogsRecordModel{}
	if err := model.FromDomain(record); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

func toDomainRecords(modelList []models.CogsRecordModel) ([]costing.CogsRecord, error) {
	records := make([]costing.CogsRecord, len(modelList))
	for i := range modelList {
		record, err := modelList[i].ToDomain()
		if err != nil {
			return nil, err
		}
		records[i] = *record
	}
	return records, nil
}

// orderClause builds a safe ORDER BY from the filter, falling back to
// created_at DESC for anything unexpected
func orderClause(filter shared.Filter) string {
	column := "created_at"
	switch filter.OrderBy {
	case "created_at", "quantity_sold", "total_cogs":
		column = filter.OrderBy
	}
	direction := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}
