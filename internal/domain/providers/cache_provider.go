package providers

import (
	"context"
)

// CacheProvider backs the detection result cache and the per-code
// intervention cache. A miss is reported as an error from Get; callers treat
// any cache failure as a miss and recompute.
type CacheProvider interface {
	// Get retrieves a raw value; returns an error on miss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL in seconds
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key is present
	Exists(ctx context.Context, key string) (bool, error)
}
