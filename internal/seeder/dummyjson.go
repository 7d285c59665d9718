package seeder

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/GTDGit/gtd_search/internal/models"
)

// DummyJSONURL lists every product of the public DummyJSON catalog.
const DummyJSONURL = "https://dummyjson.com/products?limit=0"

// DummyJSONSource imports products from the DummyJSON API.
type DummyJSONSource struct {
	client  *retryablehttp.Client
	url     string
	signals *Signals
}

// NewDummyJSONSource constructs a DummyJSONSource. An empty url uses DummyJSONURL.
func NewDummyJSONSource(client *retryablehttp.Client, url string, signals *Signals) *DummyJSONSource {
	if url == "" {
		url = DummyJSONURL
	}
	return &DummyJSONSource{client: client, url: url, signals: signals}
}

func (s *DummyJSONSource) Name() string { return "dummyjson" }

// Fetch downloads and converts the catalog.
func (s *DummyJSONSource) Fetch(ctx context.Context) ([]models.Product, error) {
	body, err := get(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}
	return s.parse(body)
}

func (s *DummyJSONSource) parse(body []byte) ([]models.Product, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("dummyjson: invalid JSON response")
	}
	items := gjson.GetBytes(body, "products")
	if !items.IsArray() {
		return nil, fmt.Errorf("dummyjson: response has no products array")
	}

	products := make([]models.Product, 0, len(items.Array()))
	items.ForEach(func(_, item gjson.Result) bool {
		title := strings.TrimSpace(item.Get("title").String())
		usd := item.Get("price").Float()
		if title == "" || usd <= 0 {
			return true
		}
		sourceCategory := item.Get("category").String()

		discount := 20.0
		if d := item.Get("discountPercentage"); d.Exists() && d.Float() > 0 {
			discount = d.Float()
		}
		rating := 4.0
		if r := item.Get("rating"); r.Exists() && r.Float() > 0 {
			rating = r.Float()
		}
		stock := int(item.Get("stock").Int())
		if stock <= 0 {
			stock = s.signals.Stock(10, 100)
		}

		metadata := models.Metadata{}
		if brand := item.Get("brand").String(); brand != "" {
			metadata.Set("brand", brand)
		}
		metadata.Set("category", sourceCategory)
		if thumb := item.Get("thumbnail").String(); thumb != "" {
			metadata.Set("thumbnail", thumb)
		}

		products = append(products, models.Product{
			Title:       title,
			Description: fmt.Sprintf("%s - %s product", item.Get("description").String(), sourceCategory),
			Category:    MapDummyJSONCategory(sourceCategory),
			Price:       toRupees(usd),
			MRP:         toRupees(usd * (1 + discount/100)),
			Currency:    models.CurrencyRupee,
			Rating:      clampRating(rating),
			Stock:       stock,
			UnitsSold:   s.signals.UnitsSold(),
			ReturnRate:  s.signals.ReturnRate(),
			Complaints:  s.signals.Complaints(),
			Metadata:    metadata,
		})
		return true
	})
	return products, nil
}

// MapDummyJSONCategory maps a DummyJSON category slug onto a catalog category.
func MapDummyJSONCategory(source string) models.Category {
	c := strings.ToLower(source)
	switch {
	case strings.Contains(c, "phone"), strings.Contains(c, "mobile"):
		return models.CategoryPhones
	case strings.Contains(c, "laptop"):
		return models.CategoryLaptops
	case strings.Contains(c, "tablet"):
		return models.CategoryTablets
	case strings.Contains(c, "accessories"), strings.Contains(c, "audio"), strings.Contains(c, "wearables"):
		return models.CategoryAccessories
	default:
		return models.CategoryOther
	}
}
