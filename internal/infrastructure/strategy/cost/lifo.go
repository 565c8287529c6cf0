package cost

import (
	"context"

	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// LIFOStrategy implements Last-In-First-Out consumption: the newest layers
// by acquisition date are drawn down first.
type LIFOStrategy struct {
	strategy.BaseStrategy
}

// NewLIFOStrategy creates a new LIFO consumption strategy
func NewLIFOStrategy() *LIFOStrategy {
	return &LIFOStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"lifo",
			"Last-In-First-Out layer consumption",
		),
	}
}

// Method returns the costing method
func (s *LIFOStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodLIFO
}

// BuildPlan consumes layers newest-first until the quantity is covered
func (s *LIFOStrategy) BuildPlan(
	ctx context.Context,
	quantity decimal.Decimal,
	layers []strategy.LayerSnapshot,
) (strategy.ConsumptionPlan, error) {
	return buildSequentialPlan(
		strategy.CostMethodLIFO,
		quantity,
		sortedByAcquisition(layers, false),
	)
}
