package persistence

import (
	"context"
	"testing"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/erp/costing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupConfigTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.CostingConfigModel{}))
	return db
}

func TestGormCostingConfigRepository_SaveKeepsOneRowPerProduct(t *testing.T) {
	db := setupConfigTestDB(t)
	repo := NewGormCostingConfigRepository(db)
	ctx := context.Background()
	productID := uuid.New()

	config, err := costing.NewCostingConfig(productID, strategy.CostMethodFIFO)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, config))

	// switching methods rewrites the same row
	config.Method = strategy.CostMethodLIFO
	require.NoError(t, repo.Save(ctx, config))

	found, err := repo.FindByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, strategy.CostMethodLIFO, found.Method)

	var count int64
	require.NoError(t, db.Model(&models.CostingConfigModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormCostingConfigRepository_FindByProduct_NotFound(t *testing.T) {
	db := setupConfigTestDB(t)
	repo := NewGormCostingConfigRepository(db)

	_, err := repo.FindByProduct(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
