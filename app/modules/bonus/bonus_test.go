package bonus

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, slog.Default()), mr
}

func TestRedisStoreGrantAndCheck(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	held, err := store.IsBonusUser(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, held)

	require.NoError(t, store.Grant(ctx, "u1", time.Hour))

	held, err = store.IsBonusUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, held)

	held, err = store.IsBonusUser(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, held, "grants are per user")
}

func TestRedisStoreGrantExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Grant(ctx, "u1", time.Minute))
	mr.FastForward(2 * time.Minute)

	held, err := store.IsBonusUser(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, held)
}

func TestRedisStoreGrantDefaultTTL(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, store.Grant(context.Background(), "u1", 0))

	ttl := mr.TTL(keyPrefix + "u1")
	assert.Equal(t, DefaultGrantTTL, ttl)
}

func TestRedisStoreReportsLookupFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, slog.Default())
	mr.Close()
	require.NoError(t, client.Close())

	_, err := store.IsBonusUser(context.Background(), "u1")
	assert.Error(t, err)
}

func TestNoopStore(t *testing.T) {
	store := NoopStore{}
	held, err := store.IsBonusUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, held)
	assert.NoError(t, store.Grant(context.Background(), "u1", time.Hour))
}
