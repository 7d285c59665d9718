package seeder

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_search/internal/models"
)

// WebScraperURLs are the server-rendered pages of the webscraper.io test shop.
var WebScraperURLs = []string{
	"https://webscraper.io/test-sites/e-commerce/static/computers/laptops",
	"https://webscraper.io/test-sites/e-commerce/static/computers/tablets",
	"https://webscraper.io/test-sites/e-commerce/static/phones/touch",
	"https://webscraper.io/test-sites/e-commerce/allinone/computers/laptops",
	"https://webscraper.io/test-sites/e-commerce/allinone/computers/tablets",
	"https://webscraper.io/test-sites/e-commerce/allinone/phones/touch",
}

var (
	priceCleaner = strings.NewReplacer("$", "", ",", "")
	ratingNumber = regexp.MustCompile(`[\d.]+`)
)

// WebScraperSource scrapes product cards from webscraper.io listing pages.
type WebScraperSource struct {
	client  *retryablehttp.Client
	urls    []string
	delay   time.Duration
	signals *Signals
}

// NewWebScraperSource constructs a WebScraperSource. Empty urls use
// WebScraperURLs; delay is waited between pages.
func NewWebScraperSource(client *retryablehttp.Client, urls []string, delay time.Duration, signals *Signals) *WebScraperSource {
	if len(urls) == 0 {
		urls = WebScraperURLs
	}
	return &WebScraperSource{client: client, urls: urls, delay: delay, signals: signals}
}

func (s *WebScraperSource) Name() string { return "webscraper" }

// Fetch scrapes every page. A failing page is logged and skipped.
func (s *WebScraperSource) Fetch(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	for i, url := range s.urls {
		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return products, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		body, err := get(ctx, s.client, url)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Failed to scrape page")
			continue
		}
		page, err := s.parse(body, url)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Failed to parse page")
			continue
		}
		log.Info().Str("url", url).Int("products", len(page)).Msg("Scraped page")
		products = append(products, page...)
	}
	return products, nil
}

func (s *WebScraperSource) parse(body []byte, url string) ([]models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	category, keywords := categoryFromURL(url)
	var products []models.Product

	doc.Find(".thumbnail, .product-wrapper").Each(func(_ int, card *goquery.Selection) {
		titleEl := card.Find(".title, h4 a").First()
		priceEl := card.Find(".price").First()
		if titleEl.Length() == 0 || priceEl.Length() == 0 {
			return
		}

		title, ok := titleEl.Attr("title")
		if !ok || strings.TrimSpace(title) == "" {
			title = titleEl.Text()
		}
		title = strings.TrimSpace(title)

		usd, err := strconv.ParseFloat(strings.TrimSpace(priceCleaner.Replace(priceEl.Text())), 64)
		if title == "" || err != nil || usd <= 0 {
			return
		}

		desc := strings.TrimSpace(card.Find(".description").First().Text())
		if desc == "" {
			desc = title
		}

		rating := 4.0
		if m := ratingNumber.FindString(card.Find(".ratings").First().Text()); m != "" {
			if r, err := strconv.ParseFloat(m, 64); err == nil {
				rating = r
			}
		}
		if stars := card.Find(".ratings [data-rating]").AttrOr("data-rating", ""); stars != "" {
			if r, err := strconv.ParseFloat(stars, 64); err == nil {
				rating = r
			}
		}

		products = append(products, models.Product{
			Title:       title,
			Description: fmt.Sprintf("%s - %s - High quality electronics product", desc, keywords),
			Category:    category,
			Price:       toRupees(usd),
			MRP:         toRupees(usd * 1.25),
			Currency:    models.CurrencyRupee,
			Rating:      clampRating(rating),
			Stock:       s.signals.Stock(10, 150),
			UnitsSold:   s.signals.UnitsSold(),
			ReturnRate:  s.signals.ReturnRate(),
			Complaints:  s.signals.Complaints(),
			Metadata: models.NewMetadata(
				"source", "web_scraped",
				"category", string(category),
				"brand", firstWord(title),
			),
		})
	})
	return products, nil
}

func categoryFromURL(url string) (models.Category, string) {
	switch {
	case strings.Contains(url, "phones"):
		return models.CategoryPhones, "mobile phone smartphone"
	case strings.Contains(url, "laptop"):
		return models.CategoryLaptops, "laptop computer"
	case strings.Contains(url, "tablet"):
		return models.CategoryTablets, "tablet"
	default:
		return models.CategoryOther, "electronics"
	}
}
