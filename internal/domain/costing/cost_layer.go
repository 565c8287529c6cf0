package costing

import (
	"time"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LayerStatus represents the lifecycle state of a cost layer
type LayerStatus string

const (
	// LayerStatusActive means the layer still has remaining quantity
	LayerStatusActive LayerStatus = "active"
	// LayerStatusDepleted means the layer's remaining quantity reached zero
	LayerStatusDepleted LayerStatus = "depleted"
)

// CostLayer represents one receipt of inventory at a specific unit cost.
// Layers are created by the receiving process (or a restock) and are only
// ever mutated through Consume; they are never deleted, so depleted layers
// remain available for audit.
type CostLayer struct {
	shared.BaseEntity
	ProductID         uuid.UUID
	AcquiredAt        time.Time
	UnitCost          decimal.Decimal // immutable once set
	OriginalQuantity  decimal.Decimal // immutable once set
	RemainingQuantity decimal.Decimal
	Status            LayerStatus
}

// NewCostLayer creates a new cost layer for a received quantity
func NewCostLayer(
	productID uuid.UUID,
	acquiredAt time.Time,
	unitCost decimal.Decimal,
	quantity decimal.Decimal,
) (*CostLayer, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Layer quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	return &CostLayer{
		BaseEntity:        shared.NewBaseEntity(),
		ProductID:         productID,
		AcquiredAt:        acquiredAt,
		UnitCost:          unitCost,
		OriginalQuantity:  quantity,
		RemainingQuantity: quantity,
		Status:            LayerStatusActive,
	}, nil
}

// Consume reduces the remaining quantity. Consuming more than remains is an
// invariant violation, not a partial deduction: the plan that requested it
// was computed from a stale snapshot or is buggy, and the caller must abort.
func (l *CostLayer) Consume(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return ErrInvariantViolation
	}
	if quantity.GreaterThan(l.RemainingQuantity) {
		return ErrInvariantViolation
	}
	l.RemainingQuantity = l.RemainingQuantity.Sub(quantity)
	l.syncStatus()
	l.UpdatedAt = time.Now()
	return nil
}

// syncStatus keeps status in agreement with remaining quantity
func (l *CostLayer) syncStatus() {
	if l.RemainingQuantity.IsZero() {
		l.Status = LayerStatusDepleted
	} else {
		l.Status = LayerStatusActive
	}
}

// IsActive returns true if the layer still has remaining quantity
func (l *CostLayer) IsActive() bool {
	return l.Status == LayerStatusActive && l.RemainingQuantity.GreaterThan(decimal.Zero)
}

// Value returns the remaining value held in this layer
func (l *CostLayer) Value() decimal.Decimal {
	return l.RemainingQuantity.Mul(l.UnitCost)
}

// Snapshot returns the read-only view handed to consumption strategies
func (l *CostLayer) Snapshot() strategy.LayerSnapshot {
	return strategy.LayerSnapshot{
		LayerID:           l.ID,
		AcquiredAt:        l.AcquiredAt,
		UnitCost:          l.UnitCost,
		RemainingQuantity: l.RemainingQuantity,
	}
}

// CheckInvariants verifies the layer's internal consistency: remaining
// quantity stays within [0, original] and status agrees with it.
func (l *CostLayer) CheckInvariants() error {
	if l.RemainingQuantity.IsNegative() {
		return ErrInvariantViolation
	}
	if l.RemainingQuantity.GreaterThan(l.OriginalQuantity) {
		return ErrInvariantViolation
	}
	if l.RemainingQuantity.IsZero() && l.Status != LayerStatusDepleted {
		return ErrInvariantViolation
	}
	if l.RemainingQuantity.GreaterThan(decimal.Zero) && l.Status != LayerStatusActive {
		return ErrInvariantViolation
	}
	return nil
}
