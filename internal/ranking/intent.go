package ranking

import (
	"regexp"
	"strings"

	"github.com/GTDGit/gtd_search/internal/models"
)

var storagePattern = regexp.MustCompile(`(\d+)\s*(gb|tb|storage)`)

// IntentExtractor infers purchase intent from query text using keyword and
// regex checks. It never sets a category.
type IntentExtractor struct {
	vocab Vocabulary
}

func NewIntentExtractor(vocab Vocabulary) *IntentExtractor {
	return &IntentExtractor{vocab: vocab.normalized()}
}

// Extract always returns a complete intent.
func (e *IntentExtractor) Extract(query string) models.Intent {
	q := strings.ToLower(query)
	intent := models.NeutralIntent()

	// Cheap wins when both vocabularies match.
	if containsAny(q, e.vocab.CheapTerms) {
		intent.PricePreference = models.PriceCheap
	} else if containsAny(q, e.vocab.ExpensiveTerms) {
		intent.PricePreference = models.PriceExpensive
	}

	intent.LatestPreferred = containsAny(q, e.vocab.RecencyTerms)

	for _, color := range e.vocab.Colors {
		if strings.Contains(q, color) {
			c := color
			intent.Color = &c
			break
		}
	}

	if m := storagePattern.FindStringSubmatch(q); m != nil {
		unit := strings.ToUpper(m[2])
		if unit == "STORAGE" {
			unit = "GB"
		}
		s := m[1] + unit
		intent.Storage = &s
	}

	return intent
}
