package cost

import (
	"context"
	"sort"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// WeightedAverageStrategy blends all active layers into one average unit
// cost applied uniformly to the sale. The plan still reports per-layer
// draw-down, allocated proportionally to each layer's remaining share, so
// the layer ledger stays exact.
type WeightedAverageStrategy struct {
	strategy.BaseStrategy
}

// NewWeightedAverageStrategy creates a new weighted average consumption strategy
func NewWeightedAverageStrategy() *WeightedAverageStrategy {
	return &WeightedAverageStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"weighted_average",
			"Weighted average layer consumption",
		),
	}
}

// Method returns the costing method
func (s *WeightedAverageStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodWeightedAverage
}

// BuildPlan allocates the requested quantity across layers proportionally to
// their remaining share. Each share is rounded to the engine's quantity
// precision and capped at the layer's remaining quantity; the rounding
// remainder is spread over layers that still have spare capacity, largest
// remaining first, so allocations sum exactly to the request without any
// entry overdrawing its layer.
func (s *WeightedAverageStrategy) BuildPlan(
	ctx context.Context,
	quantity decimal.Decimal,
	layers []strategy.LayerSnapshot,
) (strategy.ConsumptionPlan, error) {
	totalQty := totalRemaining(layers)
	if err := checkRequest(quantity, layers); err != nil {
		if totalQty.IsZero() && quantity.IsPositive() {
			return strategy.ConsumptionPlan{}, costing.ErrNoInventory
		}
		return strategy.ConsumptionPlan{}, err
	}

	plan := strategy.ConsumptionPlan{
		Method:    strategy.CostMethodWeightedAverage,
		Entries:   make([]strategy.PlanEntry, 0, len(layers)),
		TotalCost: decimal.Zero,
	}
	if quantity.IsZero() {
		return plan, nil
	}

	totalValue := decimal.Zero
	for _, layer := range layers {
		totalValue = totalValue.Add(layer.RemainingQuantity.Mul(layer.UnitCost))
	}
	averageCost := totalValue.Div(totalQty)

	// Deterministic allocation order regardless of how the caller fetched
	// the layers.
	sorted := sortedByAcquisition(layers, true)

	allocated := decimal.Zero
	for _, layer := range sorted {
		share := layer.RemainingQuantity.Mul(quantity).Div(totalQty).Round(strategy.QuantityPrecision)
		share = decimal.Min(share, layer.RemainingQuantity)
		plan.Entries = append(plan.Entries, strategy.PlanEntry{
			LayerID:  layer.LayerID,
			Quantity: share,
			UnitCost: averageCost,
		})
		allocated = allocated.Add(share)
	}

	// Rounding leaves the allocations short or over by a few precision
	// steps. Settle the difference against the largest layers: a shortfall
	// only goes where spare capacity exists (quantity <= totalQty
	// guarantees enough spare overall), an overshoot only shrinks draws.
	remainder := quantity.Sub(allocated)
	if !remainder.IsZero() {
		order := make([]int, len(plan.Entries))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return sorted[order[i]].RemainingQuantity.GreaterThan(sorted[order[j]].RemainingQuantity)
		})
		for _, idx := range order {
			if remainder.IsZero() {
				break
			}
			if remainder.IsPositive() {
				spare := sorted[idx].RemainingQuantity.Sub(plan.Entries[idx].Quantity)
				step := decimal.Min(remainder, spare)
				plan.Entries[idx].Quantity = plan.Entries[idx].Quantity.Add(step)
				remainder = remainder.Sub(step)
			} else {
				step := decimal.Min(remainder.Neg(), plan.Entries[idx].Quantity)
				plan.Entries[idx].Quantity = plan.Entries[idx].Quantity.Sub(step)
				remainder = remainder.Add(step)
			}
		}
	}

	// Zero draws carry no information in the breakdown
	entries := plan.Entries[:0]
	for _, entry := range plan.Entries {
		if !entry.Quantity.IsZero() {
			entries = append(entries, entry)
		}
	}
	plan.Entries = entries

	plan.TotalCost = quantity.Mul(averageCost)
	return plan, nil
}
