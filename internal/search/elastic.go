package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/tidwall/gjson"

	"github.com/GTDGit/gtd_search/internal/config"
	"github.com/GTDGit/gtd_search/internal/models"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "title":       {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "description": {"type": "text", "fields": {"raw": {"type": "keyword", "ignore_above": 8191}}},
      "category":    {"type": "keyword"},
      "price":       {"type": "long"},
      "mrp":         {"type": "long"},
      "currency":    {"type": "keyword"},
      "rating":      {"type": "float"},
      "stock":       {"type": "long"},
      "unitsSold":   {"type": "long"},
      "returnRate":  {"type": "float"},
      "complaints":  {"type": "long"},
      "metadata":    {"type": "flattened"},
      "createdAt":   {"type": "date"},
      "updatedAt":   {"type": "date"}
    }
  }
}`

// ElasticCatalog retrieves and indexes products in Elasticsearch.
type ElasticCatalog struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticsearch creates a new Elasticsearch client.
func NewElasticsearch(cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}

	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return es, nil
}

// NewElasticCatalog wraps client for the given index.
func NewElasticCatalog(client *elasticsearch.Client, index string) *ElasticCatalog {
	return &ElasticCatalog{client: client, index: index}
}

// FindCandidates mirrors the relational predicate: any term as a
// case-insensitive substring of title or description, or the category.
func (e *ElasticCatalog) FindCandidates(ctx context.Context, q models.CandidateQuery) ([]models.Product, error) {
	should := make([]map[string]interface{}, 0, len(q.Terms)*2+1)
	for _, t := range q.Terms {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		pattern := "*" + escapeWildcard(t) + "*"
		for _, field := range []string{"title.raw", "description.raw"} {
			should = append(should, map[string]interface{}{
				"wildcard": map[string]interface{}{
					field: map[string]interface{}{"value": pattern, "case_insensitive": true},
				},
			})
		}
	}
	if q.Category != nil {
		should = append(should, map[string]interface{}{
			"term": map[string]interface{}{"category": string(*q.Category)},
		})
	}
	if len(should) == 0 {
		return []models.Product{}, nil
	}

	body := map[string]interface{}{
		"size": q.Limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
		"sort": []map[string]interface{}{
			{"createdAt": "asc"},
			{"id": "asc"},
		},
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(buf)),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search error: %s: %s", res.Status(), gjson.GetBytes(raw, "error.reason").String())
	}

	products := []models.Product{}
	var decodeErr error
	gjson.GetBytes(raw, "hits.hits").ForEach(func(_, hit gjson.Result) bool {
		var p models.Product
		if err := json.Unmarshal([]byte(hit.Get("_source").Raw), &p); err != nil {
			decodeErr = fmt.Errorf("decode hit %s: %w", hit.Get("_id").String(), err)
			return false
		}
		products = append(products, p)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return products, nil
}

// Index writes p under its ID, replacing any previous version.
func (e *ElasticCatalog) Index(ctx context.Context, p *models.Product) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}

	res, err := e.client.Index(e.index, bytes.NewReader(doc),
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(p.ID),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch index error: %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the index with its mapping when missing.
func (e *ElasticCatalog) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch exists check failed: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = e.client.Indices.Create(e.index,
		e.client.Indices.Create.WithContext(ctx),
		e.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch create index failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch create index error: %s", res.Status())
	}
	return nil
}

// Ping tests the Elasticsearch connection.
func (e *ElasticCatalog) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}
