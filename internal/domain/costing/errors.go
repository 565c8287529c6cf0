package costing

import "github.com/erp/costing/internal/domain/shared"

// Costing domain errors
var (
	// ErrInsufficientInventory is returned when the requested quantity exceeds
	// the total remaining quantity across all active layers. It is a business
	// state error and is never retried.
	ErrInsufficientInventory = shared.NewDomainError("INSUFFICIENT_INVENTORY", "Requested quantity exceeds remaining inventory")

	// ErrNoInventory is returned when a weighted average is requested with no
	// active layers, leaving the average undefined.
	ErrNoInventory = shared.NewDomainError("NO_INVENTORY", "No active cost layers for product")

	// ErrInvariantViolation indicates an internal consistency failure, such as
	// a mutation that would drive a remaining quantity negative. It is fatal
	// and aborts the enclosing unit of work.
	ErrInvariantViolation = shared.NewDomainError("INVARIANT_VIOLATION", "Cost layer state invariant violated")

	// ErrConcurrencyConflict is transient: the per-product serialization
	// mechanism detected contention. Callers retry a bounded number of times.
	ErrConcurrencyConflict = shared.NewDomainError("CONCURRENCY_CONFLICT", "Cost layers were modified by another process")
)
