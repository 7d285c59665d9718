package ranking

import (
	"sort"

	"github.com/GTDGit/gtd_search/internal/models"
)

// Scored pairs a candidate with its score for one ranking pass.
type Scored struct {
	Product models.Product
	Score   float64
}

// Rank returns a copy of scored sorted by descending score. Equal scores keep
// their retrieval order.
func Rank(scored []Scored) []Scored {
	out := make([]Scored, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Project converts ranked candidates to the response shape, dropping scores.
func Project(ranked []Scored) []models.SearchResultItem {
	items := make([]models.SearchResultItem, 0, len(ranked))
	for _, s := range ranked {
		p := s.Product
		items = append(items, models.SearchResultItem{
			ProductID:    p.ID,
			Title:        p.Title,
			Description:  p.Description,
			Category:     p.Category,
			MRP:          p.MRP,
			SellingPrice: p.Price,
			Rating:       p.Rating,
			Metadata:     p.Metadata,
			Stock:        p.Stock,
		})
	}
	return items
}

// Assemble sorts and projects in one step.
func Assemble(scored []Scored) []models.SearchResultItem {
	return Project(Rank(scored))
}
