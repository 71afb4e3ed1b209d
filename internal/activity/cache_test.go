package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResponseCacheServesWithinTTL(t *testing.T) {
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	cache := NewResponseCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Put("key", &Response{TotalCount: 7})

	now = now.Add(59 * time.Second)
	got, ok := cache.Get("key")
	require.True(t, ok)
	require.Equal(t, 7, got.TotalCount)
}

func TestResponseCacheNeverReturnsExpiredEntry(t *testing.T) {
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	cache := NewResponseCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Put("key", &Response{TotalCount: 7})

	// The entry may still be resident, but a read must not serve it.
	now = now.Add(time.Minute)
	_, ok := cache.Get("key")
	require.False(t, ok)
	require.Equal(t, 1, cache.Len())
}

func TestResponseCachePutSweepsExpiredEntries(t *testing.T) {
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	cache := NewResponseCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Put("old", &Response{TotalCount: 1})

	now = now.Add(2 * time.Minute)
	cache.Put("fresh", &Response{TotalCount: 2})

	require.Equal(t, 1, cache.Len())
	_, ok := cache.Get("old")
	require.False(t, ok)
	got, ok := cache.Get("fresh")
	require.True(t, ok)
	require.Equal(t, 2, got.TotalCount)
}

func TestResponseCacheSweepRemovesOnlyExpired(t *testing.T) {
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	cache := NewResponseCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Put("old", &Response{TotalCount: 1})

	now = now.Add(30 * time.Second)
	cache.Put("newer", &Response{TotalCount: 2})

	now = now.Add(45 * time.Second)
	cache.Sweep()

	require.Equal(t, 1, cache.Len())
	_, ok := cache.Get("newer")
	require.True(t, ok)
}

func TestFilterCacheKeyIsCanonical(t *testing.T) {
	a := Filter{UserName: "dev", Page: 1, PageSize: 25}
	b := Filter{UserName: "dev", Page: 1, PageSize: 25}
	c := Filter{UserName: "dev", Page: 2, PageSize: 25}

	require.Equal(t, a.CacheKey(), b.CacheKey())
	require.NotEqual(t, a.CacheKey(), c.CacheKey())
}
