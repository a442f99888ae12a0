package kv

import (
	"context"
	"time"
)

// Store is a small expiring key-value store.
// Token revocation is its only user; values are opaque strings.
type Store interface {
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Exists reports whether key is present and not expired.
	Exists(ctx context.Context, key string) (bool, error)

	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
}
