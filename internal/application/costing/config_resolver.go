package costing

import (
	"context"
	"errors"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
)

// ConfigResolver resolves the costing method to use for a product.
// A missing configuration row is normal and falls back to the default;
// a stored but unknown method is a data problem and surfaces as an error.
type ConfigResolver struct {
	configRepo    costing.CostingConfigRepository
	defaultMethod strategy.CostMethod
}

// NewConfigResolver creates a ConfigResolver with the given fallback method.
// An invalid fallback silently becomes the system default.
func NewConfigResolver(configRepo costing.CostingConfigRepository, defaultMethod strategy.CostMethod) *ConfigResolver {
	if !defaultMethod.IsValid() {
		defaultMethod = costing.DefaultCostMethod
	}
	return &ConfigResolver{
		configRepo:    configRepo,
		defaultMethod: defaultMethod,
	}
}

// Resolve returns the costing method for a product
func (r *ConfigResolver) Resolve(ctx context.Context, productID uuid.UUID) (strategy.CostMethod, error) {
	config, err := r.configRepo.FindByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return r.defaultMethod, nil
		}
		return "", err
	}
	if !config.Method.IsValid() {
		return "", shared.NewDomainError("INVALID_COST_METHOD", "Configured costing method is not supported: "+config.Method.String())
	}
	return config.Method, nil
}

// SetMethod creates or replaces a product's costing configuration. Changing
// the method only affects future consumptions; existing records keep the
// method they were computed with.
func (r *ConfigResolver) SetMethod(ctx context.Context, productID uuid.UUID, method strategy.CostMethod) (*costing.CostingConfig, error) {
	config, err := costing.NewCostingConfig(productID, method)
	if err != nil {
		return nil, err
	}
	if existing, err := r.configRepo.FindByProduct(ctx, productID); err == nil {
		// Keep the row identity stable across method changes
		config.BaseEntity = existing.BaseEntity
		config.UpdatedAt = time.Now()
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := r.configRepo.Save(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}
