package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func recordedEvent() *costing.CogsRecordedEvent {
	productID := uuid.New()
	plan := strategy.ConsumptionPlan{
		ProductID: productID,
		Method:    strategy.CostMethodFIFO,
		Entries: []strategy.PlanEntry{
			{LayerID: uuid.New(), Quantity: decimal.NewFromInt(5), UnitCost: decimal.NewFromInt(10)},
		},
		TotalCost: decimal.NewFromInt(50),
	}
	return costing.NewCogsRecordedEvent(costing.NewCogsRecord(productID, decimal.NewFromInt(5), plan, nil))
}

// spyHandler records what it receives
type spyHandler struct {
	eventTypes []string
	mu         sync.Mutex
	received   []shared.DomainEvent
	err        error
	panics     bool
}

func newSpyHandler(eventTypes ...string) *spyHandler {
	return &spyHandler{eventTypes: eventTypes}
}

func (h *spyHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, event)
	return h.err
}

func (h *spyHandler) EventTypes() []string { return h.eventTypes }

func (h *spyHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func TestInMemoryEventBus_DeliversToMatchingHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newSpyHandler(costing.EventTypeCogsRecorded)
	bus.Subscribe(handler)

	evt := recordedEvent()
	require.NoError(t, bus.Publish(context.Background(), evt))

	require.Equal(t, 1, handler.count())
	received, ok := handler.received[0].(*costing.CogsRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, evt.Record.ID, received.Record.ID)
}

func TestInMemoryEventBus_SkipsNonMatchingHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	depletion := newSpyHandler(costing.EventTypeLayerDepleted)
	bus.Subscribe(depletion)

	require.NoError(t, bus.Publish(context.Background(), recordedEvent()))
	assert.Equal(t, 0, depletion.count())
}

func TestInMemoryEventBus_WildcardReceivesEverything(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	audit := newSpyHandler() // no types: sees all events
	bus.Subscribe(audit)

	layer, err := costing.NewCostLayer(uuid.New(), time.Now(), decimal.NewFromInt(10), decimal.NewFromInt(5))
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(),
		recordedEvent(),
		costing.NewLayerDepletedEvent(layer.ProductID, layer.ID),
		costing.NewStockRestockedEvent(layer, nil),
	))
	assert.Equal(t, 3, audit.count())
}

func TestInMemoryEventBus_HandlerFailureDoesNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := newSpyHandler(costing.EventTypeCogsRecorded)
	failing.err = errors.New("summary store unavailable")
	healthy := newSpyHandler(costing.EventTypeCogsRecorded)
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	// Publish never surfaces handler errors to the recording path
	require.NoError(t, bus.Publish(context.Background(), recordedEvent()))
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	panicking := newSpyHandler(costing.EventTypeCogsRecorded)
	panicking.panics = true
	healthy := newSpyHandler(costing.EventTypeCogsRecorded)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), recordedEvent()))
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newSpyHandler(costing.EventTypeCogsRecorded)
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), recordedEvent()))
	require.Equal(t, 1, handler.count())

	bus.Unsubscribe(handler)
	require.NoError(t, bus.Publish(context.Background(), recordedEvent()))
	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newSpyHandler(costing.EventTypeCogsRecorded)
	bus.Subscribe(handler, costing.EventTypeLayerDepleted)

	require.NoError(t, bus.Publish(context.Background(), recordedEvent()))
	assert.Equal(t, 0, handler.count())

	require.NoError(t, bus.Publish(context.Background(),
		costing.NewLayerDepletedEvent(uuid.New(), uuid.New())))
	assert.Equal(t, 1, handler.count())
}
