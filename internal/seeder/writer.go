package seeder

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_search/internal/models"
)

// Store is the write side of the catalog used by the seeder.
type Store interface {
	Create(ctx context.Context, p *models.Product) error
	DeleteAll(ctx context.Context) (int64, error)
}

// Indexer mirrors written products into a search index.
type Indexer interface {
	Index(ctx context.Context, p *models.Product) error
}

// Writer persists fetched products through a bounded worker pool.
type Writer struct {
	store    Store
	indexer  Indexer
	poolSize int
}

// NewWriter constructs a Writer. indexer may be nil.
func NewWriter(store Store, indexer Indexer, poolSize int) *Writer {
	if poolSize <= 0 {
		poolSize = 8
	}
	return &Writer{store: store, indexer: indexer, poolSize: poolSize}
}

// Summary reports a seeding run.
type Summary struct {
	Deleted  int64
	Inserted int
	Failed   int
	BySource map[string]int
}

// Seed fetches every source, optionally clears the catalog, and writes the
// combined products. It fails only when no source yields a product.
func (w *Writer) Seed(ctx context.Context, sources []Source, replace bool) (Summary, error) {
	summary := Summary{BySource: make(map[string]int, len(sources))}

	var all []models.Product
	for _, src := range sources {
		products, err := src.Fetch(ctx)
		if err != nil {
			log.Warn().Err(err).Str("source", src.Name()).Msg("Source fetch failed")
		}
		summary.BySource[src.Name()] = len(products)
		log.Info().Str("source", src.Name()).Int("products", len(products)).Msg("Source fetched")
		all = append(all, products...)
	}
	if len(all) == 0 {
		return summary, fmt.Errorf("no products fetched")
	}

	if replace {
		deleted, err := w.store.DeleteAll(ctx)
		if err != nil {
			return summary, fmt.Errorf("clear catalog: %w", err)
		}
		summary.Deleted = deleted
		log.Info().Int64("deleted", deleted).Msg("Cleared existing products")
	}

	inserted, failed, err := w.write(ctx, all)
	summary.Inserted = inserted
	summary.Failed = failed
	return summary, err
}

func (w *Writer) write(ctx context.Context, products []models.Product) (int, int, error) {
	pool, err := ants.NewPool(w.poolSize)
	if err != nil {
		return 0, 0, fmt.Errorf("create write pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		inserted atomic.Int64
		failed   atomic.Int64
	)
	for i := range products {
		p := products[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := w.store.Create(ctx, &p); err != nil {
				failed.Add(1)
				log.Warn().Err(err).Str("title", p.Title).Msg("Failed to insert product")
				return
			}
			inserted.Add(1)
			if w.indexer != nil {
				if err := w.indexer.Index(ctx, &p); err != nil {
					log.Warn().Err(err).Str("product_id", p.ID).Msg("Failed to index product")
				}
			}
		})
		if err != nil {
			wg.Done()
			failed.Add(1)
		}
	}
	wg.Wait()

	return int(inserted.Load()), int(failed.Load()), ctx.Err()
}
