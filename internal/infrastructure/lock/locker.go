package lock

import (
	"context"

	"github.com/google/uuid"
)

// ProductLocker serializes COGS recording per product. Concurrent calls for
// the same product take turns; calls for different products proceed
// independently.
type ProductLocker interface {
	// Lock blocks until the product's lock is held or ctx is done
	Lock(ctx context.Context, productID uuid.UUID) (Unlocker, error)
}

// Unlocker releases a held product lock
type Unlocker interface {
	Unlock(ctx context.Context) error
}

// UnlockFunc adapts a function to the Unlocker interface
type UnlockFunc func(ctx context.Context) error

// Unlock calls the underlying function
func (f UnlockFunc) Unlock(ctx context.Context) error {
	return f(ctx)
}
