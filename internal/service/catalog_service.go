package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_search/internal/models"
	"github.com/GTDGit/gtd_search/internal/utils"
)

// ProductStore persists catalog products.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	UpdateMetadata(ctx context.Context, id string, metadata models.Metadata) (*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// ProductIndexer mirrors products into a secondary search index.
type ProductIndexer interface {
	Index(ctx context.Context, p *models.Product) error
}

// CreateProductRequest is the payload for adding a product. Pointer fields
// are required and distinguish zero from absent.
type CreateProductRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Rating      *float64        `json:"rating"`
	Price       *int            `json:"price"`
	MRP         *int            `json:"mrp"`
	Stock       *int            `json:"stock"`
	Currency    string          `json:"currency"`
	UnitsSold   int             `json:"unitsSold"`
	ReturnRate  float64         `json:"returnRate"`
	Complaints  int             `json:"complaints"`
	Metadata    models.Metadata `json:"metadata"`
}

// CatalogService handles product writes.
type CatalogService struct {
	store   ProductStore
	indexer ProductIndexer
}

// NewCatalogService constructs a CatalogService. indexer may be nil.
func NewCatalogService(store ProductStore, indexer ProductIndexer) *CatalogService {
	return &CatalogService{store: store, indexer: indexer}
}

// CreateProduct validates req, stores the product and returns its ID.
func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (string, error) {
	p, err := req.toProduct()
	if err != nil {
		return "", err
	}
	p.ID = uuid.New().String()

	if err := s.store.Create(ctx, p); err != nil {
		return "", fmt.Errorf("create product: %w", err)
	}
	log.Info().Str("product_id", p.ID).Str("title", p.Title).Msg("Product created")

	s.index(ctx, p)
	return p.ID, nil
}

// UpdateMetadata replaces the metadata of product id.
func (s *CatalogService) UpdateMetadata(ctx context.Context, id string, metadata models.Metadata) (*models.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: productId is required", utils.ErrInvalidMetadata)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.ErrProductNotFound
	}

	p, err := s.store.UpdateMetadata(ctx, id, metadata)
	if err != nil {
		if errors.Is(err, utils.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update metadata: %w", err)
	}
	log.Info().Str("product_id", id).Int("keys", metadata.Len()).Msg("Product metadata updated")

	s.index(ctx, p)
	return p, nil
}

// GetProduct returns product id or utils.ErrProductNotFound.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.ErrProductNotFound
	}
	return s.store.GetByID(ctx, id)
}

// index failures are logged; the relational store stays the source of truth.
func (s *CatalogService) index(ctx context.Context, p *models.Product) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.Index(ctx, p); err != nil {
		log.Error().Err(err).Str("product_id", p.ID).Msg("Failed to index product")
	}
}

func (r *CreateProductRequest) toProduct() (*models.Product, error) {
	title := strings.TrimSpace(r.Title)
	desc := strings.TrimSpace(r.Description)
	if title == "" || desc == "" || r.Rating == nil || r.Price == nil || r.MRP == nil || r.Stock == nil {
		return nil, fmt.Errorf("%w: missing required fields: title, description, rating, price, mrp, stock", utils.ErrInvalidProduct)
	}

	invalid := func(msg string) error {
		return fmt.Errorf("%w: %s", utils.ErrInvalidProduct, msg)
	}
	switch {
	case *r.Rating < 0 || *r.Rating > 5:
		return nil, invalid("rating must be between 0 and 5")
	case *r.Price < 0:
		return nil, invalid("price cannot be negative")
	case *r.MRP < 0:
		return nil, invalid("mrp cannot be negative")
	case *r.Stock < 0:
		return nil, invalid("stock cannot be negative")
	case r.UnitsSold < 0:
		return nil, invalid("unitsSold cannot be negative")
	case r.Complaints < 0:
		return nil, invalid("complaints cannot be negative")
	case r.ReturnRate < 0 || r.ReturnRate > 100:
		return nil, invalid("returnRate must be between 0 and 100")
	}

	currency := r.Currency
	if currency == "" {
		currency = models.CurrencyRupee
	}
	switch currency {
	case models.CurrencyRupee, models.CurrencyUSD, models.CurrencyEUR:
	default:
		return nil, invalid(fmt.Sprintf("unsupported currency %q", currency))
	}

	category := models.CategoryOther
	if r.Category != "" {
		category = models.Category(strings.ToLower(r.Category))
		if !category.IsValid() {
			return nil, invalid(fmt.Sprintf("unknown category %q", r.Category))
		}
	}

	return &models.Product{
		Title:       title,
		Description: desc,
		Category:    category,
		Price:       *r.Price,
		MRP:         *r.MRP,
		Currency:    currency,
		Rating:      *r.Rating,
		Stock:       *r.Stock,
		UnitsSold:   r.UnitsSold,
		ReturnRate:  r.ReturnRate,
		Complaints:  r.Complaints,
		Metadata:    r.Metadata,
	}, nil
}
