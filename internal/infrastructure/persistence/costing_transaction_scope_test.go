package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	appcosting "github.com/erp/costing/internal/application/costing"
	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/erp/costing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCostingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.CostLayerModel{}, &models.CogsRecordModel{}, &models.CogsPeriodSummaryModel{}))
	return db
}

func seedLayer(t *testing.T, db *gorm.DB, productID uuid.UUID, qty, cost int64) *costing.CostLayer {
	t.Helper()
	layer, err := costing.NewCostLayer(productID, time.Now(), decimal.NewFromInt(cost), decimal.NewFromInt(qty))
	require.NoError(t, err)
	require.NoError(t, NewGormCostLayerRepository(db).Save(context.Background(), layer))
	return layer
}

func TestGormTransactionScope_CommitsConsumptionAndRecordTogether(t *testing.T) {
	db := setupCostingTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	productID := uuid.New()
	layer := seedLayer(t, db, productID, 20, 10)

	plan := strategy.ConsumptionPlan{
		ProductID: productID,
		Method:    strategy.CostMethodFIFO,
		Entries: []strategy.PlanEntry{
			{LayerID: layer.ID, Quantity: decimal.NewFromInt(5), UnitCost: decimal.NewFromInt(10)},
		},
		TotalCost: decimal.NewFromInt(50),
	}

	err := scope.Execute(ctx, func(repos appcosting.TransactionalRepositories) error {
		if err := repos.LayerRepo().ApplyConsumption(ctx, plan); err != nil {
			return err
		}
		record := costing.NewCogsRecord(productID, decimal.NewFromInt(5), plan, nil)
		return repos.RecordRepo().Save(ctx, record)
	})
	require.NoError(t, err)

	found, err := NewGormCostLayerRepository(db).FindByID(ctx, layer.ID)
	require.NoError(t, err)
	assert.True(t, found.RemainingQuantity.Equal(decimal.NewFromInt(15)))

	var records int64
	require.NoError(t, db.Model(&models.CogsRecordModel{}).Count(&records).Error)
	assert.Equal(t, int64(1), records)
}

func TestGormTransactionScope_RollsBackPartialDecrements(t *testing.T) {
	db := setupCostingTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	productID := uuid.New()
	layer := seedLayer(t, db, productID, 20, 10)

	boom := errors.New("record insert failed")
	err := scope.Execute(ctx, func(repos appcosting.TransactionalRepositories) error {
		plan := strategy.ConsumptionPlan{
			ProductID: productID,
			Method:    strategy.CostMethodFIFO,
			Entries: []strategy.PlanEntry{
				{LayerID: layer.ID, Quantity: decimal.NewFromInt(5), UnitCost: decimal.NewFromInt(10)},
			},
			TotalCost: decimal.NewFromInt(50),
		}
		if err := repos.LayerRepo().ApplyConsumption(ctx, plan); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// The decrement did not survive the rollback
	found, err := NewGormCostLayerRepository(db).FindByID(ctx, layer.ID)
	require.NoError(t, err)
	assert.True(t, found.RemainingQuantity.Equal(decimal.NewFromInt(20)))
}

func TestGormCostLayerRepository_ConsumptionDepletesExactly(t *testing.T) {
	db := setupCostingTestDB(t)
	repo := NewGormCostLayerRepository(db)
	ctx := context.Background()
	productID := uuid.New()
	layer := seedLayer(t, db, productID, 20, 10)

	plan := strategy.ConsumptionPlan{
		ProductID: productID,
		Method:    strategy.CostMethodFIFO,
		Entries: []strategy.PlanEntry{
			{LayerID: layer.ID, Quantity: decimal.NewFromInt(20), UnitCost: decimal.NewFromInt(10)},
		},
		TotalCost: decimal.NewFromInt(200),
	}
	require.NoError(t, repo.ApplyConsumption(ctx, plan))

	found, err := repo.FindByID(ctx, layer.ID)
	require.NoError(t, err)
	assert.True(t, found.RemainingQuantity.IsZero())
	assert.Equal(t, costing.LayerStatusDepleted, found.Status)

	// Depleted layers drop out of the active set
	active, err := repo.FindActiveByProduct(ctx, productID, costing.LayerOrderAscending)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestGormCostLayerRepository_StaleSnapshotConflicts(t *testing.T) {
	db := setupCostingTestDB(t)
	repo := NewGormCostLayerRepository(db)
	ctx := context.Background()
	productID := uuid.New()
	layer := seedLayer(t, db, productID, 10, 10)

	overdraw := strategy.ConsumptionPlan{
		ProductID: productID,
		Method:    strategy.CostMethodFIFO,
		Entries: []strategy.PlanEntry{
			{LayerID: layer.ID, Quantity: decimal.NewFromInt(11), UnitCost: decimal.NewFromInt(10)},
		},
		TotalCost: decimal.NewFromInt(110),
	}
	err := repo.ApplyConsumption(ctx, overdraw)
	assert.ErrorIs(t, err, costing.ErrConcurrencyConflict)

	found, err := repo.FindByID(ctx, layer.ID)
	require.NoError(t, err)
	assert.True(t, found.RemainingQuantity.Equal(decimal.NewFromInt(10)))
}
