package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "github.com/user/news-crawler/internal/adapter/redis"
)

func newStore(t *testing.T) (*redisadapter.KVStoreImpl, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redisadapter.NewKVStore(client), mr
}

func TestKVStore_SetGetExists(t *testing.T) {
	t.Parallel()

	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Hour))

	val, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	exists, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, time.Hour, mr.TTL("k"))
}

func TestKVStore_MissingKey(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()

	val, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)

	exists, err := store.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestKVStore_Expiry(t *testing.T) {
	t.Parallel()

	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	exists, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestKVStore_Unreachable(t *testing.T) {
	t.Parallel()

	store, mr := newStore(t)
	mr.Close()

	_, err := store.Exists(context.Background(), "k")
	require.Error(t, err)
	require.Error(t, store.Ping(context.Background()))
}
