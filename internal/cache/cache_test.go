package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_BasicGetPut(t *testing.T) {
	c := New[string](100, time.Hour)

	// Miss on empty cache.
	_, ok := c.Get("segment")
	assert.False(t, ok)

	c.Put("segment", "layer-json")
	got, ok := c.Get("segment")
	require.True(t, ok)
	assert.Equal(t, "layer-json", got)

	// Different key is still a miss.
	_, ok = c.Get("grid")
	assert.False(t, ok)
}

func TestCache_TTLExpiration(t *testing.T) {
	c := New[int](100, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("k", 1)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)

	// Expired entry should be removed from the map.
	c.mu.RLock()
	_, exists := c.entries["k"]
	c.mu.RUnlock()
	assert.False(t, exists)
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	c := New[int](10, 0)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("k", 7)
	now = now.Add(1000 * time.Hour)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestCache_LRUEviction(t *testing.T) {
	c := New[string](3, time.Hour)

	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("c", "3")

	// Cache is full. Adding a fourth should evict "a" (oldest).
	c.Put("d", "4")

	_, ok := c.Get("a")
	assert.False(t, ok)
	for _, k := range []string{"b", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
}

func TestCache_LRUEviction_AccessOrder(t *testing.T) {
	c := New[string](3, time.Hour)

	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("c", "3")

	// Access "a" to move it to back.
	c.Get("a")

	// Now "b" is the oldest. Adding "d" should evict "b".
	c.Put("d", "4")

	_, ok := c.Get("b")
	assert.False(t, ok)
	for _, k := range []string{"a", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
}

func TestCache_MinimumCapacity(t *testing.T) {
	c := New[int](0, time.Hour)
	c.Put("a", 1)
	c.Put("b", 2)

	assert.Equal(t, 1, c.Stats().MaxEntries)
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[[]byte](1000, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("deck/%d", n)
			c.Put(key, []byte("data"))
			c.Get(key)
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	assert.LessOrEqual(t, stats.Entries, 1000)
	assert.True(t, stats.Hits+stats.Misses > 0)
}

func TestCache_Invalidate(t *testing.T) {
	c := New[string](100, time.Hour)

	c.Put("deck/segment/actual", "a")
	c.Put("deck/segment/delta", "b")
	c.Put("deck/grid/actual", "c")

	c.Invalidate("deck/segment/")

	_, ok := c.Get("deck/segment/actual")
	assert.False(t, ok)
	_, ok = c.Get("deck/segment/delta")
	assert.False(t, ok)
	_, ok = c.Get("deck/grid/actual")
	assert.True(t, ok)

	c.mu.RLock()
	assert.Len(t, c.entries, 1)
	c.mu.RUnlock()
}

func TestCache_Stats(t *testing.T) {
	c := New[string](100, time.Hour)

	c.Put("a", "1")
	c.Put("b", "2")

	c.Get("a") // hit
	c.Get("b") // hit
	c.Get("c") // miss

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 100, stats.MaxEntries)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	require.InDelta(t, 0.6667, stats.HitRate, 0.01)
}

func TestCache_UpdateExistingKey(t *testing.T) {
	c := New[string](100, time.Hour)

	c.Put("a", "old")
	c.Put("a", "new")

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "new", got)

	// Should still only have one entry.
	c.mu.RLock()
	assert.Len(t, c.entries, 1)
	c.mu.RUnlock()
}
