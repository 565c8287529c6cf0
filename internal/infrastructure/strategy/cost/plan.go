package cost

import (
	"bytes"
	"sort"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// totalRemaining sums the remaining quantity across all layer snapshots
func totalRemaining(layers []strategy.LayerSnapshot) decimal.Decimal {
	total := decimal.Zero
	for _, layer := range layers {
		total = total.Add(layer.RemainingQuantity)
	}
	return total
}

// checkRequest validates a requested quantity against the available layers.
// A zero request is valid and yields an empty plan upstream; a request
// exceeding the total remaining quantity is a hard failure.
func checkRequest(quantity decimal.Decimal, layers []strategy.LayerSnapshot) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Requested quantity cannot be negative")
	}
	if totalRemaining(layers).LessThan(quantity) {
		return costing.ErrInsufficientInventory
	}
	return nil
}

// sortedByAcquisition returns a copy of the layers sorted by acquisition
// date, ties broken by layer ID ascending so identical inputs always yield
// identical plans.
func sortedByAcquisition(layers []strategy.LayerSnapshot, oldestFirst bool) []strategy.LayerSnapshot {
	sorted := make([]strategy.LayerSnapshot, len(layers))
	copy(sorted, layers)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].AcquiredAt.Equal(sorted[j].AcquiredAt) {
			return bytes.Compare(sorted[i].LayerID[:], sorted[j].LayerID[:]) < 0
		}
		if oldestFirst {
			return sorted[i].AcquiredAt.Before(sorted[j].AcquiredAt)
		}
		return sorted[i].AcquiredAt.After(sorted[j].AcquiredAt)
	})
	return sorted
}

// buildSequentialPlan greedily consumes layers in the given order until the
// requested quantity is covered. Shared by FIFO and LIFO.
func buildSequentialPlan(
	method strategy.CostMethod,
	quantity decimal.Decimal,
	layers []strategy.LayerSnapshot,
) (strategy.ConsumptionPlan, error) {
	if err := checkRequest(quantity, layers); err != nil {
		return strategy.ConsumptionPlan{}, err
	}

	plan := strategy.ConsumptionPlan{
		Method:    method,
		Entries:   make([]strategy.PlanEntry, 0, len(layers)),
		TotalCost: decimal.Zero,
	}

	needed := quantity
	for _, layer := range layers {
		if needed.IsZero() {
			break
		}
		consumed := decimal.Min(needed, layer.RemainingQuantity)
		if consumed.IsZero() {
			continue
		}
		plan.Entries = append(plan.Entries, strategy.PlanEntry{
			LayerID:  layer.LayerID,
			Quantity: consumed,
			UnitCost: layer.UnitCost,
		})
		plan.TotalCost = plan.TotalCost.Add(consumed.Mul(layer.UnitCost))
		needed = needed.Sub(consumed)
	}

	return plan, nil
}
