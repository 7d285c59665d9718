package worker

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_search/internal/cache"
	"github.com/GTDGit/gtd_search/internal/metrics"
	"github.com/GTDGit/gtd_search/internal/models"
	"github.com/GTDGit/gtd_search/internal/service"
)

func TestCacheSweepWorker_Run(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := cache.NewMemoryEnhancementCache(30 * time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	enh := models.Enhancement{CorrectedQuery: "iphone", Intent: models.NeutralIntent(), Method: models.MethodLLM}
	c.Put(ctx, "ifone", enh)
	c.Put(ctx, "sasta", enh)
	now = now.Add(20 * time.Minute)
	c.Put(ctx, "laptop", enh)
	now = now.Add(11 * time.Minute)

	before := testutil.ToFloat64(metrics.CacheEvictions)
	removed := NewCacheSweepWorker(c, time.Minute).run(ctx)

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.CacheEvictions))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheEntries))
}

func TestCacheSweepWorker_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		NewCacheSweepWorker(cache.NewMemoryEnhancementCache(time.Minute), 5*time.Millisecond).Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

type pageLister struct{ products []models.Product }

func (p pageLister) List(_ context.Context, limit, offset int) ([]models.Product, error) {
	if offset >= len(p.products) {
		return nil, nil
	}
	end := offset + limit
	if end > len(p.products) {
		end = len(p.products)
	}
	return p.products[offset:end], nil
}

type countingIndexer struct{ n chan string }

func (c countingIndexer) Index(_ context.Context, p *models.Product) error {
	c.n <- p.ID
	return nil
}

func TestIndexSyncWorker_RunsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	indexer := countingIndexer{n: make(chan string, 10)}
	reindexer := service.NewReindexService(pageLister{products: []models.Product{{ID: "a"}, {ID: "b"}}}, indexer, 10, 1)
	go NewIndexSyncWorker(reindexer, time.Hour).Start(ctx)

	seen := map[string]bool{}
	for len(seen) < 2 {
		select {
		case id := <-indexer.n:
			seen[id] = true
		case <-time.After(time.Second):
			require.FailNow(t, "initial sync did not run")
		}
	}
	assert.True(t, seen["a"] && seen["b"])
}
