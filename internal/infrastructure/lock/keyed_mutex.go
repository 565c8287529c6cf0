package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// KeyedMutex is an in-process ProductLocker: one mutex per product key,
// created on demand and dropped once no goroutine holds or waits for it.
// Suitable for single-process deployments; use RedisLocker when several
// processes share the same layer store.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedLockEntry
}

type keyedLockEntry struct {
	ch   chan struct{} // buffered(1); holding the token means holding the lock
	refs int
}

// NewKeyedMutex creates an empty keyed mutex
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[uuid.UUID]*keyedLockEntry),
	}
}

// Lock blocks until the product's mutex is held or ctx is done
func (k *KeyedMutex) Lock(ctx context.Context, productID uuid.UUID) (Unlocker, error) {
	k.mu.Lock()
	entry, ok := k.locks[productID]
	if !ok {
		entry = &keyedLockEntry{ch: make(chan struct{}, 1)}
		k.locks[productID] = entry
	}
	entry.refs++
	k.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
		return UnlockFunc(func(context.Context) error {
			<-entry.ch
			k.release(productID, entry)
			return nil
		}), nil
	case <-ctx.Done():
		k.release(productID, entry)
		return nil, ctx.Err()
	}
}

func (k *KeyedMutex) release(productID uuid.UUID, entry *keyedLockEntry) {
	k.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, productID)
	}
	k.mu.Unlock()
}
