package precache

import (
	"context"
	"time"
)

// Cache is the key/value store with TTL the precache entries live in.
type Cache interface {
	// Get returns the stored value; found is false after a miss or
	// expiry.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Has(ctx context.Context, key string) (bool, error)
}
