package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"exchange-rate-resolver/pkg/logger"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, logger.Nop())

	_, found, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, c.Set(ctx, "k", []byte("v1")))
	got, found, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v1"), got)

	assert.NoError(t, c.Set(ctx, "k", []byte("v2")))
	got, _, _ = c.Get(ctx, "k")
	assert.Equal(t, []byte("v2"), got)

	assert.NoError(t, c.Delete(ctx, "k"))
	_, found, _ = c.Get(ctx, "k")
	assert.False(t, found)

	// deleting a missing key is not an error
	assert.NoError(t, c.Delete(ctx, "missing"))
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0, logger.Nop())

	in := []byte("abc")
	assert.NoError(t, c.Set(ctx, "k", in))
	in[0] = 'x'

	out, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(out))

	out[0] = 'y'
	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC)

	c := NewMemoryCache(time.Minute, logger.Nop())
	c.now = func() time.Time { return now }

	assert.NoError(t, c.Set(ctx, "old", []byte("1")))
	now = now.Add(2 * time.Minute)
	assert.NoError(t, c.Set(ctx, "fresh", []byte("2")))

	_, found, _ := c.Get(ctx, "old")
	assert.False(t, found, "expired entry should read as a miss")
	_, found, _ = c.Get(ctx, "fresh")
	assert.True(t, found)

	assert.NoError(t, c.ClearExpired(ctx))
	assert.Len(t, c.cacheMap, 1)
	assert.Contains(t, c.cacheMap, "fresh")
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC)

	c := NewMemoryCache(0, logger.Nop())
	c.now = func() time.Time { return now }

	assert.NoError(t, c.Set(ctx, "k", []byte("v")))
	now = now.AddDate(1, 0, 0)

	assert.NoError(t, c.ClearExpired(ctx))
	_, found, _ := c.Get(ctx, "k")
	assert.True(t, found)
}
