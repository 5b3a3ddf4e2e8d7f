package repository

import (
	"context"
	"time"
)

// KVStore is a key-value store with per-key expiry.
type KVStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}
