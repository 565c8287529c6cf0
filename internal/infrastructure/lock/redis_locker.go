package lock

import (
	"context"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "costing:product_lock:"

// releaseScript deletes the lock only if the caller still owns it, so an
// expired-and-reacquired lock is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is a ProductLocker backed by Redis SET NX PX, for deployments
// where several processes record COGS against the same layer store.
type RedisLocker struct {
	client    *redis.Client
	ttl       time.Duration
	retryWait time.Duration
}

// NewRedisLocker creates a RedisLocker. ttl bounds how long a crashed holder
// can block other processes.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:    client,
		ttl:       ttl,
		retryWait: 10 * time.Millisecond,
	}
}

// Lock polls SET NX until the product's lock is acquired or ctx is done
func (l *RedisLocker) Lock(ctx context.Context, productID uuid.UUID) (Unlocker, error) {
	key := lockKeyPrefix + productID.String()
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return UnlockFunc(func(ctx context.Context) error {
				released, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
				if err != nil {
					return err
				}
				if released == 0 {
					// Lock expired and was taken over; the layer updates'
					// guarded decrements still protect consistency.
					return costing.ErrConcurrencyConflict
				}
				return nil
			}), nil
		}

		select {
		case <-time.After(l.retryWait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
