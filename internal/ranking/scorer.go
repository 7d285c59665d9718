package ranking

import (
	"math"
	"strings"

	"github.com/GTDGit/gtd_search/internal/models"
)

// Weights is the scoring weight table.
type Weights struct {
	ExactTitle     float64
	TitleContains  float64
	DescContains   float64
	TermTitle      float64
	TermDesc       float64
	Fuzzy          float64
	FuzzyThreshold float64
	Rating         float64
	InStock        float64
	HighStock      float64
	HighStockLevel int
	OutOfStock     float64
	SalesPer100    float64
	SalesCap       float64
	ReturnBase     float64
	ComplaintBase  float64
	ComplaintStep  float64
	ComplaintFloor float64
	DiscountCap    float64
	CheapReference float64
	CheapStep      float64
	ExpensiveStep  float64
	ExpensiveCap   float64
	Recency        float64
	Color          float64
	Storage        float64
	CategoryMatch  float64
}

// DefaultWeights returns the production weight table.
func DefaultWeights() Weights {
	return Weights{
		ExactTitle:     50,
		TitleContains:  40,
		DescContains:   20,
		TermTitle:      30,
		TermDesc:       10,
		Fuzzy:          30,
		FuzzyThreshold: 0.7,
		Rating:         20,
		InStock:        15,
		HighStock:      5,
		HighStockLevel: 50,
		OutOfStock:     -20,
		SalesPer100:    15,
		SalesCap:       15,
		ReturnBase:     10,
		ComplaintBase:  5,
		ComplaintStep:  2,
		ComplaintFloor: -15,
		DiscountCap:    15,
		CheapReference: 50000,
		CheapStep:      5000,
		ExpensiveStep:  10000,
		ExpensiveCap:   10,
		Recency:        20,
		Color:          25,
		Storage:        25,
		CategoryMatch:  30,
	}
}

// Scorer computes a non-negative relevance score for one candidate. It holds
// no mutable state and is safe for concurrent use.
type Scorer struct {
	weights Weights
	markers []string
}

func NewScorer(vocab Vocabulary, weights Weights) *Scorer {
	return &Scorer{weights: weights, markers: vocab.normalized().RecencyMarkers}
}

// Score sums text relevance, business signals and intent boosts. Negative
// contributions may offset positive ones; only the total is clamped at 0.
func (s *Scorer) Score(p *models.Product, query string, intent models.Intent) float64 {
	w := s.weights
	q := strings.ToLower(strings.TrimSpace(query))
	title := strings.ToLower(p.Title)
	desc := strings.ToLower(p.Description)

	score := s.textRelevance(title, desc, q)

	score += w.Rating * p.Rating / 5

	if p.Stock > 0 {
		score += w.InStock
		if p.Stock > w.HighStockLevel {
			score += w.HighStock
		}
	} else {
		score += w.OutOfStock
	}

	score += math.Min(w.SalesPer100*float64(p.UnitsSold)/100, w.SalesCap)
	score += math.Max(0, w.ReturnBase-p.ReturnRate/2)
	score += math.Max(w.ComplaintFloor, w.ComplaintBase-w.ComplaintStep*float64(p.Complaints))

	if p.MRP > 0 {
		score += math.Min(p.DiscountPercent()/2, w.DiscountCap)
	}

	switch intent.PricePreference {
	case models.PriceCheap:
		score += math.Max(0, (w.CheapReference-float64(p.Price))/w.CheapStep)
	case models.PriceExpensive:
		score += math.Min(float64(p.Price)/w.ExpensiveStep, w.ExpensiveCap)
	}

	if intent.LatestPreferred && containsAny(title, s.markers) {
		score += w.Recency
	}

	if intent.Color != nil && *intent.Color != "" {
		color := strings.ToLower(*intent.Color)
		if strings.Contains(title, color) || strings.Contains(desc, color) || metadataContains(p.Metadata, color) {
			score += w.Color
		}
	}

	if intent.Storage != nil && *intent.Storage != "" {
		storage := strings.ToLower(*intent.Storage)
		if strings.Contains(title, storage) || metadataContains(p.Metadata, storage) {
			score += w.Storage
		}
	}

	if intent.Category != nil && *intent.Category == p.Category {
		score += w.CategoryMatch
	}

	return math.Max(0, score)
}

func (s *Scorer) textRelevance(title, desc, q string) float64 {
	w := s.weights
	switch {
	case q == "":
		return 0
	case title == q:
		return w.ExactTitle
	case strings.Contains(title, q):
		return w.TitleContains
	case strings.Contains(desc, q):
		return w.DescContains
	}

	terms := strings.Fields(q)
	var inTitle, inDesc int
	for _, t := range terms {
		if strings.Contains(title, t) {
			inTitle++
		}
		if strings.Contains(desc, t) {
			inDesc++
		}
	}

	if inTitle == 0 && inDesc == 0 {
		if sim := Similarity(title, q); sim > w.FuzzyThreshold {
			return w.Fuzzy * sim
		}
		return 0
	}

	titleFrac := float64(inTitle) / float64(len(terms))
	score := w.TermTitle * titleFrac
	if titleFrac < 1 {
		score += w.TermDesc * float64(inDesc) / float64(len(terms))
	}
	return score
}

func metadataContains(m models.Metadata, needle string) bool {
	for _, v := range m.Values() {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
