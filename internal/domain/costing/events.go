package costing

import (
	"github.com/erp/costing/internal/domain/shared"
	"github.com/google/uuid"
)

// Event types emitted by the costing domain
const (
	EventTypeCogsRecorded   = "costing.cogs_recorded"
	EventTypeLayerDepleted  = "costing.layer_depleted"
	EventTypeStockRestocked = "costing.stock_restocked"
)

// CogsRecordedEvent is published after a COGS record has been committed.
// The period summary aggregator subscribes to it.
type CogsRecordedEvent struct {
	shared.BaseDomainEvent
	Record *CogsRecord
}

// NewCogsRecordedEvent creates a CogsRecordedEvent for a committed record
func NewCogsRecordedEvent(record *CogsRecord) *CogsRecordedEvent {
	return &CogsRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCogsRecorded, "CogsRecord", record.ID),
		Record:          record,
	}
}

// LayerDepletedEvent is published when consumption drives a layer's
// remaining quantity to exactly zero.
type LayerDepletedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID
	LayerID   uuid.UUID
}

// NewLayerDepletedEvent creates a LayerDepletedEvent
func NewLayerDepletedEvent(productID, layerID uuid.UUID) *LayerDepletedEvent {
	return &LayerDepletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLayerDepleted, "CostLayer", layerID),
		ProductID:       productID,
		LayerID:         layerID,
	}
}

// StockRestockedEvent is published when a restock creates a new cost layer,
// e.g. for a sales return.
type StockRestockedEvent struct {
	shared.BaseDomainEvent
	Layer          *CostLayer
	SourceRecordID *uuid.UUID
}

// NewStockRestockedEvent creates a StockRestockedEvent
func NewStockRestockedEvent(layer *CostLayer, sourceRecordID *uuid.UUID) *StockRestockedEvent {
	return &StockRestockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRestocked, "CostLayer", layer.ID),
		Layer:           layer,
		SourceRecordID:  sourceRecordID,
	}
}
