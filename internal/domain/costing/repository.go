package costing

import (
	"context"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LayerOrder selects the acquisition-date ordering for layer queries.
// Ascending serves FIFO, descending serves LIFO.
type LayerOrder string

const (
	LayerOrderAscending  LayerOrder = "asc"
	LayerOrderDescending LayerOrder = "desc"
)

// LayerAggregate is the aggregate view over a product's active layers,
// used by weighted-average costing.
type LayerAggregate struct {
	AverageUnitCost decimal.Decimal
	TotalQuantity   decimal.Decimal
	TotalValue      decimal.Decimal
}

// CostLayerRepository defines persistence for cost layers.
//
// Layers are exclusively owned by this store: consumption strategies only
// ever receive read-only snapshots, and ApplyConsumption is the single
// mutating operation in the engine.
type CostLayerRepository interface {
	// FindByID finds a cost layer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*CostLayer, error)

	// FindActiveByProduct returns layers with remaining quantity > 0 sorted
	// by acquisition date in the requested direction. The sort is
	// deterministic: ties are broken by layer ID ascending.
	FindActiveByProduct(ctx context.Context, productID uuid.UUID, order LayerOrder) ([]CostLayer, error)

	// AggregateActiveByProduct aggregates all active layers for a product.
	// Returns ErrNoInventory when the total active quantity is zero.
	AggregateActiveByProduct(ctx context.Context, productID uuid.UUID) (LayerAggregate, error)

	// ApplyConsumption decrements each named layer's remaining quantity by
	// the planned amount and flips status to depleted when the result is
	// exactly zero. A decrement that would go negative fails with
	// ErrConcurrencyConflict (the plan was computed from a stale snapshot);
	// it never clamps silently.
	ApplyConsumption(ctx context.Context, plan strategy.ConsumptionPlan) error

	// Save creates a cost layer. Used by the receiving boundary and the
	// restock operation; consumption never goes through Save.
	Save(ctx context.Context, layer *CostLayer) error
}

// CostingConfigRepository reads per-product costing configuration.
// The engine treats configuration as read-only; Save exists for the
// administration surface and tests.
type CostingConfigRepository interface {
	// FindByProduct returns the config for a product, or ErrNotFound
	FindByProduct(ctx context.Context, productID uuid.UUID) (*CostingConfig, error)

	// Save creates or updates a product's costing configuration
	Save(ctx context.Context, config *CostingConfig) error
}

// CogsRecordRepository persists COGS records. Records are append-only.
type CogsRecordRepository interface {
	// FindByID finds a record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*CogsRecord, error)

	// FindByProduct returns a product's records, newest first unless the
	// filter says otherwise
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]CogsRecord, error)

	// FindByProductAndPeriod returns all records for a product within a
	// period bucket, used by summary rebuilds
	FindByProductAndPeriod(ctx context.Context, productID uuid.UUID, period string) ([]CogsRecord, error)

	// ListPeriods returns the distinct period buckets a product has records in
	ListPeriods(ctx context.Context, productID uuid.UUID) ([]string, error)

	// Save inserts a new record
	Save(ctx context.Context, record *CogsRecord) error
}

// PeriodSummaryRepository persists per-product period summaries
type PeriodSummaryRepository interface {
	// FindByProductAndPeriod returns the summary row, or ErrNotFound
	FindByProductAndPeriod(ctx context.Context, productID uuid.UUID, period string) (*CogsPeriodSummary, error)

	// FindByProduct returns all summaries for a product ordered by period
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]CogsPeriodSummary, error)

	// Save creates or updates a summary row
	Save(ctx context.Context, summary *CogsPeriodSummary) error

	// DeleteByProduct removes a product's summaries, used before a rebuild
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error
}
