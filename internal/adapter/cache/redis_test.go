package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exchange-rate-resolver/internal/domain/ports"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := InitRedisStore(context.Background(), &redis.Options{Addr: mr.Addr()}, "fx:", ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, 0)

	_, found, err := store.Get(ctx, "history|USD|EUR|2023-01-02|2023-01-03")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "history|USD|EUR|2023-01-02|2023-01-03", []byte(`{"base":"USD"}`)))
	assert.True(t, mr.Exists("fx:history|USD|EUR|2023-01-02|2023-01-03"), "key should carry the prefix")

	got, found, err := store.Get(ctx, "history|USD|EUR|2023-01-02|2023-01-03")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"base":"USD"}`, string(got))

	require.NoError(t, store.Delete(ctx, "history|USD|EUR|2023-01-02|2023-01-03"))
	_, found, err = store.Get(ctx, "history|USD|EUR|2023-01-02|2023-01-03")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	require.NoError(t, store.Set(ctx, "currencies", []byte(`["EUR"]`)))
	assert.Equal(t, time.Minute, mr.TTL("fx:currencies"))

	mr.FastForward(2 * time.Minute)

	_, found, err := store.Get(ctx, "currencies")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, 0)
	mr.Close()

	_, _, err := store.Get(ctx, "currencies")
	assert.True(t, errors.Is(err, ports.ErrCacheUnavailable), "got %v", err)

	err = store.Set(ctx, "currencies", []byte("[]"))
	assert.True(t, errors.Is(err, ports.ErrCacheUnavailable), "got %v", err)

	err = store.Delete(ctx, "currencies")
	assert.True(t, errors.Is(err, ports.ErrCacheUnavailable), "got %v", err)
}

func TestInitRedisStore_PingFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := InitRedisStore(context.Background(), &redis.Options{Addr: addr, MaxRetries: -1}, "fx:", 0)
	assert.True(t, errors.Is(err, ports.ErrCacheUnavailable), "got %v", err)
}

func TestRedisStore_KeepsContextCause(t *testing.T) {
	store, _ := newRedisStore(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.Get(ctx, "currencies")
	assert.True(t, errors.Is(err, ports.ErrCacheUnavailable), "got %v", err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
