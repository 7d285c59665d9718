package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_search/internal/models"
	"github.com/GTDGit/gtd_search/internal/utils"
)

var productRowColumns = []string{
	"id", "title", "description", "category", "price", "mrp", "currency", "rating",
	"stock", "units_sold", "return_rate", "complaints", "metadata", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*ProductRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProductRepository(sqlx.NewDb(db, "postgres")), mock
}

func productRow(rows *sqlmock.Rows, id, title string, metadata string) *sqlmock.Rows {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(id, title, "desc", "phones", 1000, 1200, "Rupee", 4.2,
		10, 5, 1.5, 0, []byte(metadata), now, now)
}

func TestProductRepository_FindCandidates(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(productRowColumns)
	productRow(rows, "a", "iPhone 15", `{"Storage":"128GB","Color":"Black"}`)
	productRow(rows, "b", "iPhone Case", `{}`)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE title ILIKE ANY($1) OR description ILIKE ANY($1)`) + `\s+ORDER BY created_at, id\s+LIMIT \$2`).
		WithArgs(sqlmock.AnyArg(), 150).
		WillReturnRows(rows)

	products, err := repo.FindCandidates(context.Background(), models.CandidateQuery{
		Terms: []string{"iphone"},
		Limit: 150,
	})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "a", products[0].ID)
	assert.Equal(t, models.CategoryPhones, products[0].Category)
	assert.Equal(t, []string{"Storage", "Color"}, products[0].Metadata.Keys())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_FindCandidatesWithCategory(t *testing.T) {
	repo, mock := newMockRepo(t)
	category := models.CategoryLaptops

	mock.ExpectQuery(regexp.QuoteMeta(`OR category = $2`) + `\s+ORDER BY created_at, id\s+LIMIT \$3`).
		WithArgs(sqlmock.AnyArg(), "laptops", 100).
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	products, err := repo.FindCandidates(context.Background(), models.CandidateQuery{
		Terms:    []string{"cheap", "laptop"},
		Category: &category,
		Limit:    100,
	})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_FindCandidatesNoTerms(t *testing.T) {
	repo, mock := newMockRepo(t)

	products, err := repo.FindCandidates(context.Background(), models.CandidateQuery{Terms: []string{" "}, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_FindCandidatesError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM products`).WillReturnError(errors.New("connection refused"))

	_, err := repo.FindCandidates(context.Background(), models.CandidateQuery{Terms: []string{"x"}, Limit: 10})
	assert.Error(t, err)
}

func TestLikePatterns(t *testing.T) {
	assert.Equal(t,
		[]string{`%iphone%`, `%100\%%`, `%a\_b%`, `%c\\d%`},
		likePatterns([]string{"iphone", "100%", "a_b", `c\d`, ""}),
	)
}

func TestProductRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("id-1", "Pixel 8", "Phone", "phones", 45000, 50000, "Rupee", 4.5, 3, 0, 0.0, 0, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	p := &models.Product{
		ID:          "id-1",
		Title:       "Pixel 8",
		Description: "Phone",
		Category:    models.CategoryPhones,
		Price:       45000,
		MRP:         50000,
		Currency:    "Rupee",
		Rating:      4.5,
		Stock:       3,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, now, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_UpdateMetadata(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(productRowColumns)
	productRow(rows, "id-1", "Pixel 8", `{"Color":"Black"}`)
	mock.ExpectQuery(`UPDATE products SET metadata = \$2`).
		WithArgs("id-1", []byte(`{"Color":"Black"}`)).
		WillReturnRows(rows)

	p, err := repo.UpdateMetadata(context.Background(), "id-1", models.NewMetadata("Color", "Black"))
	require.NoError(t, err)
	v, _ := p.Metadata.Get("Color")
	assert.Equal(t, "Black", v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE products`).WillReturnError(sql.ErrNoRows)
	_, err := repo.UpdateMetadata(context.Background(), "missing", models.Metadata{})
	assert.ErrorIs(t, err, utils.ErrProductNotFound)

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(productRowColumns))
	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, utils.ErrProductNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(productRowColumns)
	productRow(rows, "a", "One", `{}`)
	mock.ExpectQuery(`ORDER BY created_at, id LIMIT \$1 OFFSET \$2`).
		WithArgs(50, 100).
		WillReturnRows(rows)

	products, err := repo.List(context.Background(), 50, 100)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_DeleteAll(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM products`).WillReturnResult(sqlmock.NewResult(0, 42))

	n, err := repo.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
