package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_search/internal/service"
)

// IndexSyncWorker periodically re-mirrors the catalog into the search index,
// repairing documents whose write-time indexing failed.
type IndexSyncWorker struct {
	reindexer *service.ReindexService
	interval  time.Duration
}

// NewIndexSyncWorker constructs an IndexSyncWorker.
func NewIndexSyncWorker(reindexer *service.ReindexService, interval time.Duration) *IndexSyncWorker {
	return &IndexSyncWorker{
		reindexer: reindexer,
		interval:  interval,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *IndexSyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting index sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Index sync worker stopped")
			return
		}
	}
}

func (w *IndexSyncWorker) run(ctx context.Context) {
	log.Info().Msg("Syncing catalog into search index...")

	res, err := w.reindexer.Reindex(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sync search index")
		return
	}

	log.Info().
		Int("indexed", res.Indexed).
		Int("failed", res.Failed).
		Dur("duration", res.Duration).
		Msg("Search index sync completed")
}
