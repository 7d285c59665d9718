package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_search/internal/cache"
	"github.com/GTDGit/gtd_search/internal/metrics"
	"github.com/GTDGit/gtd_search/internal/models"
	"github.com/GTDGit/gtd_search/internal/ranking"
	"github.com/GTDGit/gtd_search/pkg/groq"
)

// ExternalEnhancer is the LLM collaborator used by QueryEnhancer.
type ExternalEnhancer interface {
	Enhance(ctx context.Context, query string) (*groq.EnhanceResult, error)
}

// QueryEnhancer corrects a query and infers intent. It races the external
// enhancer against a deadline and falls back to the local corrector and
// intent extractor.
type QueryEnhancer struct {
	cache     cache.EnhancementCache
	external  ExternalEnhancer
	corrector *ranking.Corrector
	extractor *ranking.IntentExtractor
	deadline  time.Duration
}

// NewQueryEnhancer constructs a QueryEnhancer. A nil external enhancer
// disables the LLM path.
func NewQueryEnhancer(
	enhancementCache cache.EnhancementCache,
	external ExternalEnhancer,
	corrector *ranking.Corrector,
	extractor *ranking.IntentExtractor,
	deadline time.Duration,
) *QueryEnhancer {
	return &QueryEnhancer{
		cache:     enhancementCache,
		external:  external,
		corrector: corrector,
		extractor: extractor,
		deadline:  deadline,
	}
}

type enhanceOutcome struct {
	result *groq.EnhanceResult
	err    error
}

var errDeadline = errors.New("enhancement deadline exceeded")

// Enhance never fails; every error path degrades to the local fallback.
func (e *QueryEnhancer) Enhance(ctx context.Context, query string) models.Enhancement {
	if cached, ok := e.cache.Get(ctx, query); ok {
		cached.Method = models.MethodLLMCached
		log.Debug().Str("query", query).Msg("Enhancement cache hit")
		metrics.Enhancements.WithLabelValues(string(models.MethodLLMCached)).Inc()
		return *cached
	}

	if e.external != nil {
		enhancement, err := e.callExternal(ctx, query)
		if err == nil {
			e.cache.Put(ctx, query, enhancement)
			metrics.Enhancements.WithLabelValues(string(models.MethodLLM)).Inc()
			return enhancement
		}

		reason := metrics.ReasonError
		if errors.Is(err, errDeadline) {
			reason = metrics.ReasonTimeout
		}
		metrics.EnhancerFailures.WithLabelValues(reason).Inc()
		log.Warn().Err(err).Str("query", query).Msg("LLM enhancement failed, using manual fallback")
	}

	return e.fallback(query)
}

// callExternal runs one external call detached from caller cancellation and
// waits at most e.deadline for it. A result arriving later is dropped.
func (e *QueryEnhancer) callExternal(ctx context.Context, query string) (models.Enhancement, error) {
	done := make(chan enhanceOutcome, 1)
	callCtx := context.WithoutCancel(ctx)

	go func() {
		start := time.Now()
		res, err := e.external.Enhance(callCtx, query)
		metrics.EnhancerDuration.Observe(time.Since(start).Seconds())
		done <- enhanceOutcome{result: res, err: err}
	}()

	timer := time.NewTimer(e.deadline)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.err != nil {
			return models.Enhancement{}, out.err
		}
		return toEnhancement(out.result)
	case <-timer.C:
		return models.Enhancement{}, fmt.Errorf("%w after %s", errDeadline, e.deadline)
	}
}

func (e *QueryEnhancer) fallback(query string) models.Enhancement {
	corrected := e.corrector.Correct(query)
	metrics.Enhancements.WithLabelValues(string(models.MethodManualFallback)).Inc()
	return models.Enhancement{
		CorrectedQuery: corrected,
		Intent:         e.extractor.Extract(corrected),
		Method:         models.MethodManualFallback,
	}
}

func toEnhancement(res *groq.EnhanceResult) (models.Enhancement, error) {
	if res == nil || strings.TrimSpace(res.Corrected) == "" {
		return models.Enhancement{}, errors.New("enhancer returned no corrected query")
	}

	intent := models.Intent{
		PricePreference: models.PricePreference(res.Intent.PricePreference),
		LatestPreferred: res.Intent.LatestPreferred,
		Color:           res.Intent.Color,
		Storage:         res.Intent.Storage,
	}
	if !intent.PricePreference.IsValid() {
		return models.Enhancement{}, fmt.Errorf("enhancer returned unknown price preference %q", res.Intent.PricePreference)
	}
	if res.Intent.Category != nil {
		cat := models.Category(*res.Intent.Category)
		if !cat.IsValid() {
			return models.Enhancement{}, fmt.Errorf("enhancer returned unknown category %q", cat)
		}
		intent.Category = &cat
	}

	return models.Enhancement{
		CorrectedQuery: res.Corrected,
		Intent:         intent,
		Method:         models.MethodLLM,
	}, nil
}
