package cache

import (
	"context"
	"time"
)

// IdempotencyStore remembers the result of a completed request keyed by
// its Idempotency-Key header. A replayed key returns the recorded value
// instead of running the operation again.
type IdempotencyStore interface {
	// Remember returns the value recorded for the key, if one exists
	Remember(ctx context.Context, key string) (string, bool, error)

	// Record stores the result value for a key with a TTL
	Record(ctx context.Context, key, value string, ttl time.Duration) error

	// Close releases any resources held by the store
	Close() error
}
