package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueryCache_SetAndGet(t *testing.T) {
	c, err := NewQueryCache(128, time.Minute)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "countries:status", []byte(`{"total_countries":1}`))
	c.cache.Wait()

	got, ok := c.Get(ctx, "countries:status")
	require.True(t, ok)
	require.JSONEq(t, `{"total_countries":1}`, string(got))
}

func TestQueryCache_GetMissWhenEmpty(t *testing.T) {
	c, err := NewQueryCache(64, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	got, ok := c.Get(context.Background(), "countries:list:||")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestQueryCache_InvalidateByTagEvictsOnlyTaggedKeys(t *testing.T) {
	c, err := NewQueryCache(256, time.Minute)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "countries:list:Africa||", []byte("a"), "countries")
	c.Set(ctx, "countries:list:|NGN|", []byte("b"), "countries")
	c.Set(ctx, "other", []byte("keep"))
	c.cache.Wait()

	require.NoError(t, c.Invalidate(ctx, "countries"))

	_, ok := c.Get(ctx, "countries:list:Africa||")
	require.False(t, ok)
	_, ok = c.Get(ctx, "countries:list:|NGN|")
	require.False(t, ok)

	got, ok := c.Get(ctx, "other")
	require.True(t, ok)
	require.Equal(t, []byte("keep"), got)
}

func TestQueryCache_InvalidatePlainKey(t *testing.T) {
	c, err := NewQueryCache(64, time.Minute)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "countries:status", []byte("s"))
	c.cache.Wait()

	require.NoError(t, c.Invalidate(ctx, "countries:status", "unknown"))
	_, ok := c.Get(ctx, "countries:status")
	require.False(t, ok)
}

func TestQueryCache_EntriesExpire(t *testing.T) {
	c, err := NewQueryCache(64, 50*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "countries:status", []byte("s"))
	c.cache.Wait()

	require.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "countries:status")
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestNoop_AlwaysMisses(t *testing.T) {
	var c Noop
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), "tag")
	_, ok := c.Get(ctx, "k")
	require.False(t, ok)
	require.NoError(t, c.Invalidate(ctx, "k", "tag"))
	v, err := c.Version(ctx, "tag")
	require.NoError(t, err)
	require.Zero(t, v)
}

func TestQueryCache_InvalidateBumpsVersion(t *testing.T) {
	c, err := NewQueryCache(64, time.Minute)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	v0, err := c.Version(ctx, "countries")
	require.NoError(t, err)
	require.Zero(t, v0)

	require.NoError(t, c.Invalidate(ctx, "countries", "countries:status"))
	require.NoError(t, c.Invalidate(ctx, "countries"))

	v, err := c.Version(ctx, "countries")
	require.NoError(t, err)
	require.Equal(t, uint64(2), v)

	v, err = c.Version(ctx, "countries:status")
	require.NoError(t, err)
	require.Equal(t, uint64(1), v)
}
