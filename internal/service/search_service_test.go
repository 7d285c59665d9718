package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_search/internal/cache"
	"github.com/GTDGit/gtd_search/internal/models"
	"github.com/GTDGit/gtd_search/internal/ranking"
	"github.com/GTDGit/gtd_search/internal/utils"
)

type fakeRetriever struct {
	products []models.Product
	err      error
	got      models.CandidateQuery
	calls    int
}

func (f *fakeRetriever) FindCandidates(_ context.Context, q models.CandidateQuery) ([]models.Product, error) {
	f.calls++
	f.got = q
	return f.products, f.err
}

type staticEnhancer struct {
	enhancement models.Enhancement
}

func (s staticEnhancer) Enhance(context.Context, string) models.Enhancement {
	return s.enhancement
}

func newSearchService(enh Enhancer, r CandidateRetriever) *SearchService {
	return NewSearchService(enh, r, ranking.NewScorer(ranking.DefaultVocabulary(), ranking.DefaultWeights()), 150)
}

func phone(id, title string, price, stock int) models.Product {
	return models.Product{
		ID:          id,
		Title:       title,
		Description: "Smartphone",
		Category:    models.CategoryPhones,
		Price:       price,
		MRP:         price,
		Rating:      4,
		Stock:       stock,
		UnitsSold:   30,
		ReturnRate:  5,
	}
}

func TestSearchService_SastaMobile(t *testing.T) {
	retriever := &fakeRetriever{products: []models.Product{
		phone("expensive", "Mobile X", 50000, 20),
		phone("cheap", "Mobile X", 5000, 20),
	}}
	enhancer := newEnhancer(cache.NewMemoryEnhancementCache(time.Minute), nil, 800*time.Millisecond)
	svc := newSearchService(enhancer, retriever)

	res, err := svc.Search(context.Background(), "sasta mobile")
	require.NoError(t, err)

	require.Len(t, res.Products, 2)
	assert.Equal(t, "cheap", res.Products[0].ProductID)
	assert.Equal(t, 2, res.Meta.TotalResults)
	assert.Equal(t, "sasta mobile", res.Meta.Query)
	assert.Empty(t, res.Meta.CorrectedQuery)
	assert.Equal(t, models.PriceCheap, res.Meta.Intent.PricePreference)
	assert.Equal(t, models.MethodManualFallback, res.Meta.EnhancementMethod)
	assert.Regexp(t, `^\d+ms$`, res.Meta.Latency)

	assert.Equal(t, []string{"sasta", "mobile"}, retriever.got.Terms)
	assert.Equal(t, 150, retriever.got.Limit)
	assert.Nil(t, retriever.got.Category)
}

func TestSearchService_CorrectedQueryReported(t *testing.T) {
	retriever := &fakeRetriever{products: []models.Product{
		phone("case", "iPhone Case", 500, 100),
		phone("exact", "iPhone", 60000, 100),
	}}
	enhancer := newEnhancer(cache.NewMemoryEnhancementCache(time.Minute), nil, 800*time.Millisecond)
	svc := newSearchService(enhancer, retriever)

	res, err := svc.Search(context.Background(), "ifone")
	require.NoError(t, err)

	assert.Equal(t, "iphone", res.Meta.CorrectedQuery)
	assert.Equal(t, []string{"iphone"}, retriever.got.Terms)
	assert.Equal(t, "exact", res.Products[0].ProductID)
}

func TestSearchService_InStockOutranksOutOfStock(t *testing.T) {
	retriever := &fakeRetriever{products: []models.Product{
		phone("out", "Galaxy A15", 12000, 0),
		phone("in", "Galaxy A15", 12000, 10),
	}}
	svc := newSearchService(staticEnhancer{models.Enhancement{
		CorrectedQuery: "galaxy",
		Intent:         models.NeutralIntent(),
		Method:         models.MethodManualFallback,
	}}, retriever)

	res, err := svc.Search(context.Background(), "galaxy")
	require.NoError(t, err)
	assert.Equal(t, "in", res.Products[0].ProductID)
}

func TestSearchService_CategoryWidensRetrieval(t *testing.T) {
	phones := models.CategoryPhones
	other := models.CategoryOther

	retriever := &fakeRetriever{}
	svc := newSearchService(staticEnhancer{models.Enhancement{
		CorrectedQuery: "budget phone",
		Intent:         models.Intent{PricePreference: models.PriceCheap, Category: &phones},
		Method:         models.MethodLLM,
	}}, retriever)
	_, err := svc.Search(context.Background(), "budget fone")
	require.NoError(t, err)
	require.NotNil(t, retriever.got.Category)
	assert.Equal(t, models.CategoryPhones, *retriever.got.Category)

	svc = newSearchService(staticEnhancer{models.Enhancement{
		CorrectedQuery: "thing",
		Intent:         models.Intent{PricePreference: models.PriceNeutral, Category: &other},
		Method:         models.MethodLLM,
	}}, retriever)
	_, err = svc.Search(context.Background(), "thing")
	require.NoError(t, err)
	assert.Nil(t, retriever.got.Category)
}

func TestSearchService_BlankQuery(t *testing.T) {
	retriever := &fakeRetriever{}
	svc := newSearchService(staticEnhancer{}, retriever)

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := svc.Search(context.Background(), q)
		assert.ErrorIs(t, err, utils.ErrEmptyQuery)
	}
	assert.Equal(t, 0, retriever.calls)
}

func TestSearchService_RetrievalFailure(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("connection refused")}
	svc := newSearchService(staticEnhancer{models.Enhancement{
		CorrectedQuery: "laptop",
		Intent:         models.NeutralIntent(),
		Method:         models.MethodManualFallback,
	}}, retriever)

	_, err := svc.Search(context.Background(), "laptop")
	assert.ErrorIs(t, err, utils.ErrRetrievalFailed)
	assert.Equal(t, 1, retriever.calls)
}

func TestSearchService_EmptyCandidates(t *testing.T) {
	svc := newSearchService(staticEnhancer{models.Enhancement{
		CorrectedQuery: "zzz",
		Intent:         models.NeutralIntent(),
		Method:         models.MethodManualFallback,
	}}, &fakeRetriever{})

	res, err := svc.Search(context.Background(), "zzz")
	require.NoError(t, err)
	assert.NotNil(t, res.Products)
	assert.Empty(t, res.Products)
	assert.Equal(t, 0, res.Meta.TotalResults)
}
