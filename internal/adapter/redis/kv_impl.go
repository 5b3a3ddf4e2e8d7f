package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KVStoreImpl provides a concrete implementation for the KVStore interface using Redis.
type KVStoreImpl struct {
	client *redis.Client
}

// NewKVStore creates a new instance of KVStoreImpl.
func NewKVStore(client *redis.Client) *KVStoreImpl {
	return &KVStoreImpl{client: client}
}

// Set stores value under key. SET with EX is atomic, so re-marking a key
// refreshes both value and expiry.
func (r *KVStoreImpl) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Get returns the value of key and whether it exists.
func (r *KVStoreImpl) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Exists checks for the key. EXISTS returns 1 if the key exists, 0 otherwise.
func (r *KVStoreImpl) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

func (r *KVStoreImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
