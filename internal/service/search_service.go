package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_search/internal/metrics"
	"github.com/GTDGit/gtd_search/internal/models"
	"github.com/GTDGit/gtd_search/internal/ranking"
	"github.com/GTDGit/gtd_search/internal/utils"
)

// CandidateRetriever returns a bounded candidate set from the catalog store.
type CandidateRetriever interface {
	FindCandidates(ctx context.Context, q models.CandidateQuery) ([]models.Product, error)
}

// Enhancer produces a corrected query and intent.
type Enhancer interface {
	Enhance(ctx context.Context, query string) models.Enhancement
}

// SearchService runs the enhance, retrieve, score and assemble pipeline.
type SearchService struct {
	enhancer  Enhancer
	retriever CandidateRetriever
	scorer    *ranking.Scorer
	limit     int
}

func NewSearchService(enhancer Enhancer, retriever CandidateRetriever, scorer *ranking.Scorer, limit int) *SearchService {
	return &SearchService{
		enhancer:  enhancer,
		retriever: retriever,
		scorer:    scorer,
		limit:     limit,
	}
}

// Search ranks catalog products against rawQuery. Blank input returns
// utils.ErrEmptyQuery; store failures wrap utils.ErrRetrievalFailed.
func (s *SearchService) Search(ctx context.Context, rawQuery string) (*models.SearchResult, error) {
	start := time.Now()

	if strings.TrimSpace(rawQuery) == "" {
		return nil, utils.ErrEmptyQuery
	}

	enhancement := s.enhancer.Enhance(ctx, rawQuery)
	corrected := enhancement.CorrectedQuery
	intent := enhancement.Intent

	candidateQuery := models.CandidateQuery{
		Terms: strings.Fields(corrected),
		Limit: s.limit,
	}
	if intent.Category != nil && *intent.Category != models.CategoryOther {
		candidateQuery.Category = intent.Category
	}

	products, err := s.retriever.FindCandidates(ctx, candidateQuery)
	if err != nil {
		metrics.SearchRequests.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("query", rawQuery).Msg("Candidate retrieval failed")
		return nil, fmt.Errorf("%w: %v", utils.ErrRetrievalFailed, err)
	}
	metrics.SearchCandidates.Observe(float64(len(products)))

	scored := make([]ranking.Scored, len(products))
	for i := range products {
		scored[i] = ranking.Scored{
			Product: products[i],
			Score:   s.scorer.Score(&products[i], corrected, intent),
		}
	}
	ranked := ranking.Rank(scored)

	for i, r := range ranked {
		if i == 3 {
			break
		}
		log.Debug().
			Int("rank", i+1).
			Str("title", r.Product.Title).
			Float64("score", r.Score).
			Int("price", r.Product.Price).
			Int("stock", r.Product.Stock).
			Msg("Top search result")
	}

	items := ranking.Project(ranked)
	elapsed := time.Since(start)

	meta := models.SearchMeta{
		TotalResults:      len(items),
		Query:             rawQuery,
		Intent:            intent,
		EnhancementMethod: enhancement.Method,
		Latency:           fmt.Sprintf("%dms", elapsed.Milliseconds()),
	}
	if corrected != rawQuery {
		meta.CorrectedQuery = corrected
	}

	metrics.SearchRequests.WithLabelValues("ok").Inc()
	metrics.SearchDuration.WithLabelValues(string(enhancement.Method)).Observe(elapsed.Seconds())

	log.Info().
		Str("query", rawQuery).
		Str("corrected", corrected).
		Str("method", string(enhancement.Method)).
		Int("results", len(items)).
		Dur("latency", elapsed).
		Msg("Search completed")

	return &models.SearchResult{Products: items, Meta: meta}, nil
}
