package costing

import (
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BreakdownEntry is one line of a record's layer breakdown: how much was
// drawn from which layer and at what unit cost.
type BreakdownEntry struct {
	LayerID  uuid.UUID       `json:"layer_id"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// CogsRecord is the persisted outcome of a single sale event. Records are
// append-only: corrections are new offsetting records, never edits.
type CogsRecord struct {
	shared.BaseEntity
	ProductID    uuid.UUID
	QuantitySold decimal.Decimal
	UnitRevenue  *decimal.Decimal
	TotalRevenue *decimal.Decimal
	TotalCogs    decimal.Decimal
	GrossMargin  *decimal.Decimal
	Method       strategy.CostMethod
	Breakdown    []BreakdownEntry
}

// NewCogsRecord creates a record from an executed consumption plan.
// Revenue and gross margin are derived only when unit revenue is supplied.
func NewCogsRecord(
	productID uuid.UUID,
	quantitySold decimal.Decimal,
	plan strategy.ConsumptionPlan,
	unitRevenue *decimal.Decimal,
) *CogsRecord {
	record := &CogsRecord{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		QuantitySold: quantitySold,
		TotalCogs:    plan.TotalCost,
		Method:       plan.Method,
		Breakdown:    make([]BreakdownEntry, len(plan.Entries)),
	}
	for i, entry := range plan.Entries {
		record.Breakdown[i] = BreakdownEntry{
			LayerID:  entry.LayerID,
			Quantity: entry.Quantity,
			UnitCost: entry.UnitCost,
		}
	}
	if unitRevenue != nil {
		revenue := quantitySold.Mul(*unitRevenue)
		margin := revenue.Sub(plan.TotalCost)
		unit := *unitRevenue
		record.UnitRevenue = &unit
		record.TotalRevenue = &revenue
		record.GrossMargin = &margin
	}
	return record
}

// ConsumedQuantity returns the total quantity drawn across the breakdown
func (r *CogsRecord) ConsumedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, e := range r.Breakdown {
		total = total.Add(e.Quantity)
	}
	return total
}
