package costing

import (
	"context"
	"errors"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/erp/costing/internal/infrastructure/lock"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultMaxRetries bounds how often a recording is retried after a
	// concurrency conflict before the error is surfaced to the caller
	DefaultMaxRetries = 3
	// DefaultRetryBackoff is the initial wait before a retry; it doubles
	// per attempt
	DefaultRetryBackoff = 50 * time.Millisecond
)

// StrategyProvider resolves the consumption strategy for a costing method
type StrategyProvider interface {
	// ForMethod returns the strategy implementing the given costing method
	ForMethod(method strategy.CostMethod) (strategy.ConsumptionStrategy, error)
}

// CogsService records cost of goods sold for sale events. Each recording
// atomically consumes cost layers according to the product's costing method
// and appends an immutable CogsRecord.
//
// Writes to one product are serialized through the ProductLocker; the guarded
// decrements in ApplyConsumption protect consistency even if the lock is lost.
type CogsService struct {
	txScope        TransactionScope
	layerRepo      costing.CostLayerRepository
	recordRepo     costing.CogsRecordRepository
	resolver       *ConfigResolver
	strategies     StrategyProvider
	locker         lock.ProductLocker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	validate       *validator.Validate
	maxRetries     int
	retryBackoff   time.Duration
}

// NewCogsService creates a new CogsService
func NewCogsService(
	txScope TransactionScope,
	layerRepo costing.CostLayerRepository,
	recordRepo costing.CogsRecordRepository,
	resolver *ConfigResolver,
	strategies StrategyProvider,
	locker lock.ProductLocker,
	logger *zap.Logger,
) *CogsService {
	return &CogsService{
		txScope:      txScope,
		layerRepo:    layerRepo,
		recordRepo:   recordRepo,
		resolver:     resolver,
		strategies:   strategies,
		locker:       locker,
		logger:       logger,
		validate:     validator.New(),
		maxRetries:   DefaultMaxRetries,
		retryBackoff: DefaultRetryBackoff,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CogsService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetRetryPolicy overrides the retry bounds for concurrency conflicts
func (s *CogsService) SetRetryPolicy(maxRetries int, backoff time.Duration) {
	if maxRetries >= 0 {
		s.maxRetries = maxRetries
	}
	if backoff > 0 {
		s.retryBackoff = backoff
	}
}

// RecordCogs records cost of goods sold for a sale event. The product's
// layers are consumed per its costing method, and the resulting record is
// committed in the same transaction as the layer decrements.
//
// A conflict with a concurrent writer is retried with doubling backoff up to
// the configured bound; past it, ErrConcurrencyConflict reaches the caller.
func (s *CogsService) RecordCogs(ctx context.Context, req RecordCogsRequest) (*CogsRecordResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}
	if req.Quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity sold cannot be negative")
	}

	method, err := s.resolveMethod(ctx, req)
	if err != nil {
		return nil, err
	}
	strat, err := s.strategies.ForMethod(method)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock.Unlock(ctx); err != nil {
			s.logger.Warn("Failed to release product lock",
				zap.String("product_id", req.ProductID.String()),
				zap.Error(err))
		}
	}()

	backoff := s.retryBackoff
	for attempt := 0; ; attempt++ {
		record, depleted, err := s.recordOnce(ctx, req, strat)
		if err == nil {
			s.publishRecorded(ctx, record, depleted)
			s.logger.Info("COGS recorded",
				zap.String("product_id", req.ProductID.String()),
				zap.String("record_id", record.ID.String()),
				zap.String("method", method.String()),
				zap.String("quantity", req.Quantity.String()),
				zap.String("total_cogs", record.TotalCogs.String()))
			return toRecordResponse(record), nil
		}
		if !errors.Is(err, costing.ErrConcurrencyConflict) || attempt >= s.maxRetries {
			return nil, err
		}

		s.logger.Debug("Concurrency conflict, retrying",
			zap.String("product_id", req.ProductID.String()),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
}

// recordOnce runs one attempt of the critical section: snapshot the layers,
// build the plan, apply the decrements and insert the record, all in a single
// transaction. Returns the IDs of layers the plan depleted.
func (s *CogsService) recordOnce(
	ctx context.Context,
	req RecordCogsRequest,
	strat strategy.ConsumptionStrategy,
) (*costing.CogsRecord, []uuid.UUID, error) {
	var record *costing.CogsRecord
	var depleted []uuid.UUID

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		layers, err := repos.LayerRepo().FindActiveByProduct(ctx, req.ProductID, layerOrderFor(strat.Method()))
		if err != nil {
			return err
		}

		snapshots := make([]strategy.LayerSnapshot, len(layers))
		remaining := make(map[uuid.UUID]decimal.Decimal, len(layers))
		for i := range layers {
			snapshots[i] = layers[i].Snapshot()
			remaining[layers[i].ID] = layers[i].RemainingQuantity
		}

		plan, err := strat.BuildPlan(ctx, req.Quantity, snapshots)
		if err != nil {
			return err
		}
		plan.ProductID = req.ProductID

		if err := repos.LayerRepo().ApplyConsumption(ctx, plan); err != nil {
			return err
		}
		for _, entry := range plan.Entries {
			if entry.Quantity.Equal(remaining[entry.LayerID]) {
				depleted = append(depleted, entry.LayerID)
			}
		}

		record = costing.NewCogsRecord(req.ProductID, req.Quantity, plan, req.UnitRevenue)
		return repos.RecordRepo().Save(ctx, record)
	})
	if err != nil {
		return nil, nil, err
	}
	return record, depleted, nil
}

// RecordRestock adds received or returned inventory as a new cost layer at
// its own acquisition cost. Historical layers are never re-inflated: a return
// enters at the cost it comes back at and is consumed like any other layer.
func (s *CogsService) RecordRestock(ctx context.Context, req RestockRequest) (*CostLayerResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	acquiredAt := time.Now()
	if req.AcquiredAt != nil {
		acquiredAt = *req.AcquiredAt
	}
	layer, err := costing.NewCostLayer(req.ProductID, acquiredAt, req.UnitCost, req.Quantity)
	if err != nil {
		return nil, err
	}

	if err := s.layerRepo.Save(ctx, layer); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, costing.NewStockRestockedEvent(layer, req.SourceRecordID))
	}
	s.logger.Info("Stock restocked",
		zap.String("product_id", req.ProductID.String()),
		zap.String("layer_id", layer.ID.String()),
		zap.String("quantity", req.Quantity.String()),
		zap.String("unit_cost", req.UnitCost.String()))

	return toLayerResponse(layer), nil
}

// GetRecord retrieves a COGS record by ID
func (s *CogsService) GetRecord(ctx context.Context, id uuid.UUID) (*CogsRecordResponse, error) {
	record, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRecordResponse(record), nil
}

// ListRecords returns a product's COGS records, paginated
func (s *CogsService) ListRecords(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]CogsRecordResponse, error) {
	records, err := s.recordRepo.FindByProduct(ctx, productID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]CogsRecordResponse, len(records))
	for i := range records {
		responses[i] = *toRecordResponse(&records[i])
	}
	return responses, nil
}

// ListActiveLayers returns the product's layers that still hold quantity,
// oldest acquisition first
func (s *CogsService) ListActiveLayers(ctx context.Context, productID uuid.UUID) ([]CostLayerResponse, error) {
	layers, err := s.layerRepo.FindActiveByProduct(ctx, productID, costing.LayerOrderAscending)
	if err != nil {
		return nil, err
	}
	responses := make([]CostLayerResponse, len(layers))
	for i := range layers {
		responses[i] = *toLayerResponse(&layers[i])
	}
	return responses, nil
}

// GetValuation returns the current on-hand quantity, value and average unit
// cost across the product's active layers
func (s *CogsService) GetValuation(ctx context.Context, productID uuid.UUID) (*ValuationResponse, error) {
	aggregate, err := s.layerRepo.AggregateActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ValuationResponse{
		ProductID:       productID,
		TotalQuantity:   aggregate.TotalQuantity,
		TotalValue:      aggregate.TotalValue,
		AverageUnitCost: aggregate.AverageUnitCost,
	}, nil
}

// resolveMethod picks the costing method for a request: an explicit override
// wins, otherwise the product's configuration (or the system default) applies
func (s *CogsService) resolveMethod(ctx context.Context, req RecordCogsRequest) (strategy.CostMethod, error) {
	if req.Method != "" {
		method := strategy.CostMethod(req.Method)
		if !method.IsValid() {
			return "", shared.NewDomainError("INVALID_COST_METHOD", "Unknown costing method: "+req.Method)
		}
		return method, nil
	}
	return s.resolver.Resolve(ctx, req.ProductID)
}

// publishRecorded publishes the post-commit events for a recording. Errors
// are logged by the event bus, not propagated: the record is already durable.
func (s *CogsService) publishRecorded(ctx context.Context, record *costing.CogsRecord, depleted []uuid.UUID) {
	if s.eventPublisher == nil {
		return
	}
	events := make([]shared.DomainEvent, 0, len(depleted)+1)
	events = append(events, costing.NewCogsRecordedEvent(record))
	for _, layerID := range depleted {
		events = append(events, costing.NewLayerDepletedEvent(record.ProductID, layerID))
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// layerOrderFor maps a costing method to the layer ordering its strategy
// expects: FIFO consumes oldest first, LIFO newest first, weighted average
// is order-insensitive
func layerOrderFor(method strategy.CostMethod) costing.LayerOrder {
	if method == strategy.CostMethodLIFO {
		return costing.LayerOrderDescending
	}
	return costing.LayerOrderAscending
}
