package persistence

import (
	"testing"

	"github.com/erp/costing/internal/infrastructure/config"
	applogger "github.com/erp/costing/internal/infrastructure/logger"
	"github.com/erp/costing/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"
)

func TestOpen_AppliesPoolSettingsAndLogsThroughZap(t *testing.T) {
	core, observed := observer.New(zap.DebugLevel)
	gormLog := applogger.NewGormLogger(zap.New(core), gormlogger.Info)

	// a single connection keeps every statement on the same :memory: database
	cfg := &config.DatabaseConfig{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 1,
		ConnMaxIdleTime: 1,
	}

	db, err := Open(sqlite.Open(":memory:"), cfg, gormLog)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping())

	stats, err := db.PoolStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)

	require.NoError(t, db.DB.AutoMigrate(&models.CostingConfigModel{}))

	var count int64
	require.NoError(t, db.DB.Model(&models.CostingConfigModel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// statements surfaced through the zap-backed gorm logger
	assert.NotEmpty(t, observed.All())
}
