package strategy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuantityPrecision is the number of fractional digits carried by quantities
// and unit costs throughout the engine.
const QuantityPrecision = 4

// CostMethod represents the costing method used for inventory consumption
type CostMethod string

const (
	CostMethodFIFO            CostMethod = "fifo"
	CostMethodLIFO            CostMethod = "lifo"
	CostMethodWeightedAverage CostMethod = "weighted_average"
)

// String returns the string representation of the cost method
func (m CostMethod) String() string {
	return string(m)
}

// IsValid returns true if the cost method is one of the supported methods
func (m CostMethod) IsValid() bool {
	switch m {
	case CostMethodFIFO, CostMethodLIFO, CostMethodWeightedAverage:
		return true
	default:
		return false
	}
}

// AllCostMethods returns all supported cost methods
func AllCostMethods() []CostMethod {
	return []CostMethod{
		CostMethodFIFO,
		CostMethodLIFO,
		CostMethodWeightedAverage,
	}
}

// LayerSnapshot is a read-only view of a cost layer handed to consumption
// strategies. Strategies never see, and can never mutate, the owning entity.
type LayerSnapshot struct {
	LayerID           uuid.UUID
	AcquiredAt        time.Time
	UnitCost          decimal.Decimal
	RemainingQuantity decimal.Decimal
}

// PlanEntry records how much of a single layer a plan consumes and at what
// unit cost.
type PlanEntry struct {
	LayerID  uuid.UUID
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// Cost returns the cost contributed by this entry
func (e PlanEntry) Cost() decimal.Decimal {
	return e.Quantity.Mul(e.UnitCost)
}

// ConsumptionPlan is the ordered consumption a strategy proposes for a
// requested quantity. The sum of entry quantities always equals the requested
// quantity; a plan is never partial.
type ConsumptionPlan struct {
	ProductID uuid.UUID
	Method    CostMethod
	Entries   []PlanEntry
	TotalCost decimal.Decimal
}

// TotalQuantity returns the sum of quantities across all entries
func (p ConsumptionPlan) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, e := range p.Entries {
		total = total.Add(e.Quantity)
	}
	return total
}

// IsEmpty returns true if the plan consumes nothing
func (p ConsumptionPlan) IsEmpty() bool {
	return len(p.Entries) == 0
}

// ConsumptionStrategy builds a consumption plan for a requested quantity from
// a snapshot of active cost layers. Implementations are pure: they never
// mutate their input and have no side effects.
type ConsumptionStrategy interface {
	Strategy
	// Method returns the costing method this strategy implements
	Method() CostMethod
	// BuildPlan computes which layers are consumed, how much each, and the
	// total cost for the requested quantity
	BuildPlan(ctx context.Context, quantity decimal.Decimal, layers []LayerSnapshot) (ConsumptionPlan, error)
}
