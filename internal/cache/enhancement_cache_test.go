package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_search/internal/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func sampleEnhancement(corrected string) models.Enhancement {
	color := "black"
	return models.Enhancement{
		CorrectedQuery: corrected,
		Intent: models.Intent{
			PricePreference: models.PriceCheap,
			Color:           &color,
		},
		Method: models.MethodLLM,
	}
}

func TestMemoryEnhancementCache_GetPut(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	c := NewMemoryEnhancementCache(30 * time.Minute).WithClock(clock.Now)

	_, ok := c.Get(ctx, "ifone")
	assert.False(t, ok)

	c.Put(ctx, "ifone", sampleEnhancement("iphone"))
	got, ok := c.Get(ctx, "ifone")
	require.True(t, ok)
	assert.Equal(t, "iphone", got.CorrectedQuery)

	// keys are exact: no trimming or case folding
	_, ok = c.Get(ctx, "IFONE")
	assert.False(t, ok)
	_, ok = c.Get(ctx, " ifone")
	assert.False(t, ok)
}

func TestMemoryEnhancementCache_ExpiryIsLazy(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	c := NewMemoryEnhancementCache(30 * time.Minute).WithClock(clock.Now)

	c.Put(ctx, "q", sampleEnhancement("q"))
	clock.Advance(29*time.Minute + 59*time.Second)
	_, ok := c.Get(ctx, "q")
	assert.True(t, ok)

	clock.Advance(time.Second)
	assert.Equal(t, 1, c.Len())
	_, ok = c.Get(ctx, "q")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryEnhancementCache_PutRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	c := NewMemoryEnhancementCache(time.Minute).WithClock(clock.Now)

	c.Put(ctx, "q", sampleEnhancement("first"))
	clock.Advance(50 * time.Second)
	c.Put(ctx, "q", sampleEnhancement("second"))
	clock.Advance(50 * time.Second)

	got, ok := c.Get(ctx, "q")
	require.True(t, ok)
	assert.Equal(t, "second", got.CorrectedQuery)
}

func TestMemoryEnhancementCache_Sweep(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	c := NewMemoryEnhancementCache(30 * time.Minute).WithClock(clock.Now)

	c.Put(ctx, "old-1", sampleEnhancement("a"))
	c.Put(ctx, "old-2", sampleEnhancement("b"))
	clock.Advance(20 * time.Minute)
	c.Put(ctx, "fresh", sampleEnhancement("c"))
	clock.Advance(11 * time.Minute)

	assert.Equal(t, 2, c.Sweep(ctx))
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(ctx, "fresh")
	assert.True(t, ok)
	assert.Equal(t, 0, c.Sweep(ctx))
}

func TestMemoryEnhancementCache_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryEnhancementCache(time.Minute)
	c.Put(ctx, "q", sampleEnhancement("q"))

	got, ok := c.Get(ctx, "q")
	require.True(t, ok)
	got.CorrectedQuery = "mutated"

	again, _ := c.Get(ctx, "q")
	assert.Equal(t, "q", again.CorrectedQuery)
}

func TestMemoryEnhancementCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryEnhancementCache(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := fmt.Sprintf("query-%d", i%5)
			for j := 0; j < 100; j++ {
				c.Put(ctx, q, sampleEnhancement(q))
				c.Get(ctx, q)
				c.Sweep(ctx)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, c.Len())
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewRedisClientFromAddr(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisEnhancementCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisEnhancementCache(client, 30*time.Minute)

	_, ok := c.Get(ctx, "ifone black")
	assert.False(t, ok)

	c.Put(ctx, "ifone black", sampleEnhancement("iphone black"))
	assert.True(t, mr.Exists("search:enhance:ifone black"))
	assert.Equal(t, 30*time.Minute, mr.TTL("search:enhance:ifone black"))

	got, ok := c.Get(ctx, "ifone black")
	require.True(t, ok)
	assert.Equal(t, "iphone black", got.CorrectedQuery)
	assert.Equal(t, models.PriceCheap, got.Intent.PricePreference)
	require.NotNil(t, got.Intent.Color)
	assert.Equal(t, "black", *got.Intent.Color)
	assert.Equal(t, 1, c.Len())
}

func TestRedisEnhancementCache_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisEnhancementCache(client, 30*time.Minute)

	c.Put(ctx, "q", sampleEnhancement("q"))
	mr.FastForward(31 * time.Minute)

	_, ok := c.Get(ctx, "q")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Sweep(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestRedisEnhancementCache_CorruptValueIsMiss(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisEnhancementCache(client, time.Minute)

	require.NoError(t, mr.Set("search:enhance:q", "not-json"))
	_, ok := c.Get(ctx, "q")
	assert.False(t, ok)
	assert.False(t, mr.Exists("search:enhance:q"))
}

func TestRedisEnhancementCache_UnavailableIsMiss(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisEnhancementCache(client, time.Minute)

	mr.Close()
	assert.NotPanics(t, func() {
		c.Put(ctx, "q", sampleEnhancement("q"))
	})
	_, ok := c.Get(ctx, "q")
	assert.False(t, ok)
}
