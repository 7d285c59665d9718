package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_search/internal/models"
)

const enhancementKeyPrefix = "search:enhance:"

// RedisEnhancementCache stores enhancements in Redis so several API instances
// share one cache. Expiry is delegated to the key TTL.
type RedisEnhancementCache struct {
	redis *RedisClient
	ttl   time.Duration
}

type redisEntry struct {
	Enhancement models.Enhancement `json:"enhancement"`
	CachedAt    time.Time          `json:"cachedAt"`
}

// NewRedisEnhancementCache creates a Redis-backed EnhancementCache.
func NewRedisEnhancementCache(redis *RedisClient, ttl time.Duration) *RedisEnhancementCache {
	return &RedisEnhancementCache{redis: redis, ttl: ttl}
}

func (c *RedisEnhancementCache) key(query string) string {
	return fmt.Sprintf("%s%s", enhancementKeyPrefix, query)
}

// Get treats Redis errors and undecodable values as a miss.
func (c *RedisEnhancementCache) Get(ctx context.Context, query string) (*models.Enhancement, bool) {
	raw, err := c.redis.Get(ctx, c.key(query))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Warn().Err(err).Str("query", query).Msg("Enhancement cache read failed")
		}
		return nil, false
	}

	var entry redisEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Discarding undecodable enhancement cache entry")
		_ = c.redis.Delete(ctx, c.key(query))
		return nil, false
	}
	return &entry.Enhancement, true
}

func (c *RedisEnhancementCache) Put(ctx context.Context, query string, enhancement models.Enhancement) {
	data, err := json.Marshal(redisEntry{Enhancement: enhancement, CachedAt: time.Now()})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal enhancement cache entry")
		return
	}
	if err := c.redis.Set(ctx, c.key(query), string(data), c.ttl); err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Enhancement cache write failed")
	}
}

// Sweep is a no-op: Redis evicts expired keys itself.
func (c *RedisEnhancementCache) Sweep(_ context.Context) int {
	return 0
}

func (c *RedisEnhancementCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	n, err := c.redis.CountKeys(ctx, enhancementKeyPrefix+"*")
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count enhancement cache keys")
		return 0
	}
	return n
}
