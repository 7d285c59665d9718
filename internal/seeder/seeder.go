// Package seeder imports demo catalog data from public sources.
package seeder

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_search/internal/models"
)

// USDToRupee converts source prices, which are quoted in US dollars.
const USDToRupee = 83

const userAgent = "gtd-search-seeder/1.0"

// Source produces catalog products from an external feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Product, error)
}

// Signals generates the business signals the feeds do not carry.
type Signals struct {
	rnd *rand.Rand
}

// NewSignals returns a generator seeded with seed.
func NewSignals(seed int64) *Signals {
	return &Signals{rnd: rand.New(rand.NewSource(seed))}
}

// UnitsSold is uniform in [100, 5100).
func (s *Signals) UnitsSold() int { return s.rnd.Intn(5000) + 100 }

// ReturnRate is uniform in [0, 15) rounded to two decimals.
func (s *Signals) ReturnRate() float64 { return math.Round(s.rnd.Float64()*15*100) / 100 }

// Complaints is uniform in [0, 50).
func (s *Signals) Complaints() int { return s.rnd.Intn(50) }

// Stock is uniform in [min, min+span).
func (s *Signals) Stock(min, span int) int { return s.rnd.Intn(span) + min }

// NewHTTPClient returns a retrying client that logs through zerolog.
func NewHTTPClient(timeout time.Duration, retries int) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = zerologAdapter{}
	return client
}

// get fetches url and returns its body, failing on non-2xx statuses.
func get(ctx context.Context, client *retryablehttp.Client, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return body, nil
}

func toRupees(usd float64) int {
	return int(math.Round(usd * USDToRupee))
}

func clampRating(r float64) float64 {
	if r > 5 {
		return 5
	}
	if r < 0 {
		return 0
	}
	return r
}

// zerologAdapter satisfies retryablehttp.LeveledLogger.
type zerologAdapter struct{}

func (zerologAdapter) Error(msg string, kv ...interface{}) { log.Error().Fields(kv).Msg(msg) }
func (zerologAdapter) Warn(msg string, kv ...interface{})  { log.Warn().Fields(kv).Msg(msg) }
func (zerologAdapter) Info(msg string, kv ...interface{})  { log.Debug().Fields(kv).Msg(msg) }
func (zerologAdapter) Debug(msg string, kv ...interface{}) { log.Trace().Fields(kv).Msg(msg) }

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
