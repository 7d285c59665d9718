package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_search/internal/models"
)

// ProductLister pages through the catalog in insertion order.
type ProductLister interface {
	List(ctx context.Context, limit, offset int) ([]models.Product, error)
}

// ReindexService copies every stored product into the search index.
type ReindexService struct {
	lister    ProductLister
	indexer   ProductIndexer
	batchSize int
	poolSize  int
}

// NewReindexService constructs a ReindexService. Non-positive sizes fall
// back to 200 products per page and 4 concurrent index writes.
func NewReindexService(lister ProductLister, indexer ProductIndexer, batchSize, poolSize int) *ReindexService {
	if batchSize <= 0 {
		batchSize = 200
	}
	if poolSize <= 0 {
		poolSize = 4
	}
	return &ReindexService{lister: lister, indexer: indexer, batchSize: batchSize, poolSize: poolSize}
}

// ReindexResult summarizes one reindex pass.
type ReindexResult struct {
	Indexed  int
	Failed   int
	Duration time.Duration
}

// Reindex indexes every product. Individual index failures are counted and
// logged; a listing failure aborts the pass.
func (s *ReindexService) Reindex(ctx context.Context) (ReindexResult, error) {
	start := time.Now()

	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return ReindexResult{}, fmt.Errorf("create index pool: %w", err)
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		indexed atomic.Int64
		failed  atomic.Int64
	)

	for offset := 0; ; offset += s.batchSize {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return ReindexResult{}, err
		}

		products, err := s.lister.List(ctx, s.batchSize, offset)
		if err != nil {
			wg.Wait()
			return ReindexResult{}, fmt.Errorf("list products at offset %d: %w", offset, err)
		}

		for i := range products {
			p := products[i]
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()
				if err := s.indexer.Index(ctx, &p); err != nil {
					failed.Add(1)
					log.Warn().Err(err).Str("product_id", p.ID).Msg("Failed to index product")
					return
				}
				indexed.Add(1)
			})
			if submitErr != nil {
				wg.Done()
				failed.Add(1)
				log.Warn().Err(submitErr).Str("product_id", p.ID).Msg("Failed to submit index task")
			}
		}

		if len(products) < s.batchSize {
			break
		}
	}
	wg.Wait()

	result := ReindexResult{
		Indexed:  int(indexed.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
	}
	log.Info().
		Int("indexed", result.Indexed).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Reindex completed")
	return result, nil
}
