package cache

import (
	"context"
	"sync"
	"time"

	"github.com/GTDGit/gtd_search/internal/models"
)

// EnhancementCache memoizes LLM enhancements keyed by the exact raw query
// (case-sensitive, untrimmed). Implementations must be safe for concurrent use.
type EnhancementCache interface {
	// Get returns a copy of a valid entry. Expired entries count as absent.
	Get(ctx context.Context, query string) (*models.Enhancement, bool)
	// Put overwrites any entry for query with a fresh timestamp.
	Put(ctx context.Context, query string, enhancement models.Enhancement)
	// Sweep removes every expired entry and returns how many were removed.
	Sweep(ctx context.Context) int
	// Len returns the number of stored entries, expired or not.
	Len() int
}

type memoryEntry struct {
	enhancement models.Enhancement
	cachedAt    time.Time
}

// MemoryEnhancementCache is a process-local EnhancementCache backed by a
// mutex-guarded map.
type MemoryEnhancementCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryEnhancementCache creates an in-memory cache with the given TTL.
func NewMemoryEnhancementCache(ttl time.Duration) *MemoryEnhancementCache {
	return &MemoryEnhancementCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (c *MemoryEnhancementCache) WithClock(now func() time.Time) *MemoryEnhancementCache {
	c.now = now
	return c
}

func (c *MemoryEnhancementCache) Get(_ context.Context, query string) (*models.Enhancement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[query]
	if !ok {
		return nil, false
	}
	if !c.valid(entry) {
		delete(c.entries, query)
		return nil, false
	}
	e := entry.enhancement
	return &e, true
}

func (c *MemoryEnhancementCache) Put(_ context.Context, query string, enhancement models.Enhancement) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[query] = memoryEntry{enhancement: enhancement, cachedAt: c.now()}
}

func (c *MemoryEnhancementCache) Sweep(_ context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for q, entry := range c.entries {
		if !c.valid(entry) {
			delete(c.entries, q)
			removed++
		}
	}
	return removed
}

func (c *MemoryEnhancementCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryEnhancementCache) valid(entry memoryEntry) bool {
	return c.now().Sub(entry.cachedAt) < c.ttl
}
