package cost

import (
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
)

// Provider resolves a consumption strategy for a costing method. The three
// methods form a closed set; an unknown method is an error, never a silent
// fallback.
type Provider struct {
	fifo            *FIFOStrategy
	lifo            *LIFOStrategy
	weightedAverage *WeightedAverageStrategy
}

// NewProvider creates a provider with all supported strategies registered
func NewProvider() *Provider {
	return &Provider{
		fifo:            NewFIFOStrategy(),
		lifo:            NewLIFOStrategy(),
		weightedAverage: NewWeightedAverageStrategy(),
	}
}

// ForMethod returns the strategy implementing the given costing method
func (p *Provider) ForMethod(method strategy.CostMethod) (strategy.ConsumptionStrategy, error) {
	switch method {
	case strategy.CostMethodFIFO:
		return p.fifo, nil
	case strategy.CostMethodLIFO:
		return p.lifo, nil
	case strategy.CostMethodWeightedAverage:
		return p.weightedAverage, nil
	}
	return nil, shared.NewDomainError("INVALID_COST_METHOD", "Unknown costing method: "+method.String())
}
