package cost

import (
	"context"

	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// FIFOStrategy implements First-In-First-Out consumption: the oldest layers
// by acquisition date are drawn down first.
type FIFOStrategy struct {
	strategy.BaseStrategy
}

// NewFIFOStrategy creates a new FIFO consumption strategy
func NewFIFOStrategy() *FIFOStrategy {
	return &FIFOStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo",
			"First-In-First-Out layer consumption",
		),
	}
}

// Method returns the costing method
func (s *FIFOStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodFIFO
}

// BuildPlan consumes layers oldest-first until the quantity is covered
func (s *FIFOStrategy) BuildPlan(
	ctx context.Context,
	quantity decimal.Decimal,
	layers []strategy.LayerSnapshot,
) (strategy.ConsumptionPlan, error) {
	return buildSequentialPlan(
		strategy.CostMethodFIFO,
		quantity,
		sortedByAcquisition(layers, true),
	)
}
