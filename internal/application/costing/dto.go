package costing

import (
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordCogsRequest represents a request to record COGS for a sale
type RecordCogsRequest struct {
	ProductID   uuid.UUID        `json:"product_id" validate:"required"`
	Quantity    decimal.Decimal  `json:"quantity" validate:"required"`
	UnitRevenue *decimal.Decimal `json:"unit_revenue"`
	// Method overrides the product's configured costing method for this
	// request. Empty means resolve from configuration.
	Method string `json:"method" validate:"omitempty,oneof=fifo lifo weighted_average"`
}

// RestockRequest represents a request to add inventory as a new cost layer
type RestockRequest struct {
	ProductID  uuid.UUID       `json:"product_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"required"`
	UnitCost   decimal.Decimal `json:"unit_cost" validate:"required"`
	AcquiredAt *time.Time      `json:"acquired_at"`
	// SourceRecordID links a sales-return restock back to the record whose
	// sale is being reversed
	SourceRecordID *uuid.UUID `json:"source_record_id"`
}

// SetCostingConfigRequest represents a request to set a product's costing method
type SetCostingConfigRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Method    string    `json:"method" validate:"required,oneof=fifo lifo weighted_average"`
}

// BreakdownEntryResponse is one consumed-layer line in a record response
type BreakdownEntryResponse struct {
	LayerID  uuid.UUID       `json:"layer_id"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Cost     decimal.Decimal `json:"cost"`
}

// CogsRecordResponse represents a COGS record in API responses
type CogsRecordResponse struct {
	ID           uuid.UUID                `json:"id"`
	ProductID    uuid.UUID                `json:"product_id"`
	QuantitySold decimal.Decimal          `json:"quantity_sold"`
	UnitRevenue  *decimal.Decimal         `json:"unit_revenue,omitempty"`
	TotalRevenue *decimal.Decimal         `json:"total_revenue,omitempty"`
	TotalCogs    decimal.Decimal          `json:"total_cogs"`
	GrossMargin  *decimal.Decimal         `json:"gross_margin,omitempty"`
	Method       string                   `json:"method"`
	Breakdown    []BreakdownEntryResponse `json:"breakdown"`
	CreatedAt    time.Time                `json:"created_at"`
}

// CostLayerResponse represents a cost layer in API responses
type CostLayerResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	AcquiredAt        time.Time       `json:"acquired_at"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	OriginalQuantity  decimal.Decimal `json:"original_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	Status            string          `json:"status"`
	Value             decimal.Decimal `json:"value"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ValuationResponse represents the current valuation of a product's inventory
type ValuationResponse struct {
	ProductID       uuid.UUID       `json:"product_id"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	TotalValue      decimal.Decimal `json:"total_value"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
}

// PeriodSummaryResponse represents a period summary in API responses
type PeriodSummaryResponse struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Period       string          `json:"period"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	TotalCogs    decimal.Decimal `json:"total_cogs"`
	RecordCount  int64           `json:"record_count"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// toRecordResponse converts a domain record to its response form
func toRecordResponse(record *costing.CogsRecord) *CogsRecordResponse {
	breakdown := make([]BreakdownEntryResponse, len(record.Breakdown))
	for i, e := range record.Breakdown {
		breakdown[i] = BreakdownEntryResponse{
			LayerID:  e.LayerID,
			Quantity: e.Quantity,
			UnitCost: e.UnitCost,
			Cost:     e.Quantity.Mul(e.UnitCost),
		}
	}
	return &CogsRecordResponse{
		ID:           record.ID,
		ProductID:    record.ProductID,
		QuantitySold: record.QuantitySold,
		UnitRevenue:  record.UnitRevenue,
		TotalRevenue: record.TotalRevenue,
		TotalCogs:    record.TotalCogs,
		GrossMargin:  record.GrossMargin,
		Method:       record.Method.String(),
		Breakdown:    breakdown,
		CreatedAt:    record.CreatedAt,
	}
}

// toLayerResponse converts a domain cost layer to its response form
func toLayerResponse(layer *costing.CostLayer) *CostLayerResponse {
	return &CostLayerResponse{
		ID:                layer.ID,
		ProductID:         layer.ProductID,
		AcquiredAt:        layer.AcquiredAt,
		UnitCost:          layer.UnitCost,
		OriginalQuantity:  layer.OriginalQuantity,
		RemainingQuantity: layer.RemainingQuantity,
		Status:            string(layer.Status),
		Value:             layer.Value(),
		CreatedAt:         layer.CreatedAt,
	}
}

// toSummaryResponse converts a domain period summary to its response form
func toSummaryResponse(summary *costing.CogsPeriodSummary) *PeriodSummaryResponse {
	return &PeriodSummaryResponse{
		ProductID:    summary.ProductID,
		Period:       summary.Period,
		QuantitySold: summary.QuantitySold,
		TotalCogs:    summary.TotalCogs,
		RecordCount:  summary.RecordCount,
		UpdatedAt:    summary.UpdatedAt,
	}
}
