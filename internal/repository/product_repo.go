package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/gtd_search/internal/models"
	"github.com/GTDGit/gtd_search/internal/utils"
)

const productColumns = `id, title, description, category, price, mrp, currency, rating,
        stock, units_sold, return_rate, complaints, metadata, created_at, updated_at`

// ProductRepository handles data access for catalog products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindCandidates returns products whose title or description contains any of
// q.Terms (case-insensitive), or whose category equals q.Category when set.
// Results are capped at q.Limit in insertion order; excess rows are dropped.
func (r *ProductRepository) FindCandidates(ctx context.Context, q models.CandidateQuery) ([]models.Product, error) {
	patterns := likePatterns(q.Terms)
	if len(patterns) == 0 && q.Category == nil {
		return []models.Product{}, nil
	}

	var (
		query string
		args  []interface{}
	)
	if q.Category != nil {
		query = `SELECT ` + productColumns + ` FROM products
        WHERE title ILIKE ANY($1) OR description ILIKE ANY($1) OR category = $2
        ORDER BY created_at, id
        LIMIT $3`
		args = []interface{}{pq.Array(patterns), string(*q.Category), q.Limit}
	} else {
		query = `SELECT ` + productColumns + ` FROM products
        WHERE title ILIKE ANY($1) OR description ILIKE ANY($1)
        ORDER BY created_at, id
        LIMIT $2`
		args = []interface{}{pq.Array(patterns), q.Limit}
	}

	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, err
	}
	return products, nil
}

// Create inserts a product. ID must already be set.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	const q = `
        INSERT INTO products (id, title, description, category, price, mrp, currency, rating,
            stock, units_sold, return_rate, complaints, metadata)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		p.ID,
		p.Title,
		p.Description,
		p.Category,
		p.Price,
		p.MRP,
		p.Currency,
		p.Rating,
		p.Stock,
		p.UnitsSold,
		p.ReturnRate,
		p.Complaints,
		p.Metadata,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// UpdateMetadata replaces the metadata of a product and returns the updated row.
func (r *ProductRepository) UpdateMetadata(ctx context.Context, id string, metadata models.Metadata) (*models.Product, error) {
	const q = `UPDATE products SET metadata = $2, updated_at = NOW() WHERE id = $1
        RETURNING ` + productColumns

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id, metadata); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByID returns a single product by id.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1 LIMIT 1`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns one page of products in insertion order.
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]models.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products ORDER BY created_at, id LIMIT $1 OFFSET $2`

	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, q, limit, offset); err != nil {
		return nil, err
	}
	return products, nil
}

// DeleteAll removes every product and returns how many rows were deleted.
func (r *ProductRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Ping checks database connectivity.
func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePatterns converts terms into escaped %term% patterns, skipping blanks.
func likePatterns(terms []string) []string {
	patterns := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		patterns = append(patterns, "%"+likeEscaper.Replace(t)+"%")
	}
	return patterns
}
