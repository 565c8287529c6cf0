package costing

import (
	"context"
	"testing"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/infrastructure/event"
	"github.com/erp/costing/internal/infrastructure/lock"
	"github.com/erp/costing/internal/infrastructure/strategy/cost"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Wires the recording service to the summary aggregator through the real
// event bus: each committed recording lands in the current month's summary
// without any direct call between the two services.
func TestCogsRecording_FeedsPeriodSummaryThroughBus(t *testing.T) {
	ctx := context.Background()
	layerRepo := newMemLayerRepo()
	recordRepo := newMemRecordRepo()
	summaryRepo := newMemSummaryRepo()
	configRepo := newMemConfigRepo()

	summaryService := NewPeriodSummaryService(summaryRepo, recordRepo, zap.NewNop())
	bus := event.NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(summaryService)

	service := NewCogsService(
		NewNoOpTransactionScope(layerRepo, recordRepo, summaryRepo),
		layerRepo,
		recordRepo,
		NewConfigResolver(configRepo, costing.DefaultCostMethod),
		cost.NewProvider(),
		lock.NewKeyedMutex(),
		zap.NewNop(),
	)
	service.SetEventPublisher(bus)

	productID := uuid.New()
	_, err := service.RecordRestock(ctx, RestockRequest{
		ProductID: productID,
		Quantity:  decimal.NewFromInt(30),
		UnitCost:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	_, err = service.RecordCogs(ctx, RecordCogsRequest{
		ProductID: productID,
		Quantity:  decimal.NewFromInt(5),
		Method:    "fifo",
	})
	require.NoError(t, err)
	_, err = service.RecordCogs(ctx, RecordCogsRequest{
		ProductID: productID,
		Quantity:  decimal.NewFromInt(3),
		Method:    "fifo",
	})
	require.NoError(t, err)

	period := costing.PeriodOf(time.Now().UTC())
	summary, err := summaryService.GetSummary(ctx, productID, period)
	require.NoError(t, err)
	assert.True(t, summary.QuantitySold.Equal(decimal.NewFromInt(8)))
	assert.True(t, summary.TotalCogs.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, int64(2), summary.RecordCount)
}
