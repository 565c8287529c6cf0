package costing

import (
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
)

// DefaultCostMethod is the system-wide fallback when a product has no
// costing configuration.
const DefaultCostMethod = strategy.CostMethodWeightedAverage

// CostingConfig holds the per-product costing method. Absence of a config
// means the resolver supplies the system default.
type CostingConfig struct {
	shared.BaseEntity
	ProductID uuid.UUID
	Method    strategy.CostMethod
}

// NewCostingConfig creates a costing configuration for a product
func NewCostingConfig(productID uuid.UUID, method strategy.CostMethod) (*CostingConfig, error) {
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_COST_METHOD", "Unknown costing method: "+method.String())
	}
	return &CostingConfig{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Method:     method,
	}, nil
}
