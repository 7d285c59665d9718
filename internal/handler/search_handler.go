package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_search/internal/models"
	"github.com/GTDGit/gtd_search/internal/utils"
)

// Searcher runs a product search for a raw query.
type Searcher interface {
	Search(ctx context.Context, rawQuery string) (*models.SearchResult, error)
}

// SearchHandler handles product search HTTP endpoints.
type SearchHandler struct {
	searcher Searcher
}

// NewSearchHandler constructs a SearchHandler.
func NewSearchHandler(searcher Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// SearchProducts handles GET /api/v1/search/product?query=
func (h *SearchHandler) SearchProducts(c *gin.Context) {
	query := c.Query("query")
	if strings.TrimSpace(query) == "" {
		utils.Error(c, 400, "INVALID_QUERY", "Query parameter is required")
		return
	}

	result, err := h.searcher.Search(c.Request.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrEmptyQuery):
			utils.Error(c, 400, "INVALID_QUERY", "Query parameter is required")
		default:
			utils.Error(c, 500, "SEARCH_FAILED", "Search failed")
		}
		return
	}

	utils.Success(c, 200, "Search completed", result)
}
