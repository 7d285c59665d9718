package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_search/internal/cache"
	"github.com/GTDGit/gtd_search/internal/metrics"
)

// CacheSweepWorker periodically evicts expired enhancement cache entries.
type CacheSweepWorker struct {
	cache    cache.EnhancementCache
	interval time.Duration
}

// NewCacheSweepWorker constructs a CacheSweepWorker.
func NewCacheSweepWorker(c cache.EnhancementCache, interval time.Duration) *CacheSweepWorker {
	return &CacheSweepWorker{
		cache:    c,
		interval: interval,
	}
}

// Start begins the periodic sweep loop until context is canceled.
func (w *CacheSweepWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting enhancement cache sweep worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Enhancement cache sweep worker stopped")
			return
		}
	}
}

func (w *CacheSweepWorker) run(ctx context.Context) int {
	removed := w.cache.Sweep(ctx)
	remaining := w.cache.Len()

	metrics.CacheEvictions.Add(float64(removed))
	metrics.CacheEntries.Set(float64(remaining))

	if removed > 0 {
		log.Debug().Int("removed", removed).Int("remaining", remaining).Msg("Swept expired enhancements")
	}
	return removed
}
