package ranking

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Correction maps a canonical term to its known misspellings.
type Correction struct {
	Canonical    string   `yaml:"canonical"`
	Misspellings []string `yaml:"misspellings"`
}

// Vocabulary holds the fixed word lists used by the corrector, the intent
// extractor and the scorer. It is treated as immutable once built.
type Vocabulary struct {
	Corrections    []Correction `yaml:"corrections"`
	CheapTerms     []string     `yaml:"cheap_terms"`
	ExpensiveTerms []string     `yaml:"expensive_terms"`
	RecencyTerms   []string     `yaml:"recency_terms"`
	Colors         []string     `yaml:"colors"`
	RecencyMarkers []string     `yaml:"recency_markers"`
}

// DefaultVocabulary returns a fresh copy of the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Corrections: []Correction{
			{Canonical: "iphone", Misspellings: []string{"ifone", "iphon", "aphone"}},
			{Canonical: "samsung", Misspellings: []string{"samsang", "samson", "samsun"}},
			{Canonical: "laptop", Misspellings: []string{"leptop", "labtop", "laptap"}},
			{Canonical: "mobile", Misspellings: []string{"mobail", "moble", "mobil"}},
			{Canonical: "headphone", Misspellings: []string{"hedphone", "headfone", "headfon"}},
		},
		CheapTerms:     []string{"sasta", "cheap", "budget", "affordable", "sastha", "low price", "kam price"},
		ExpensiveTerms: []string{"expensive", "premium", "high end", "luxury"},
		RecencyTerms:   []string{"latest", "new", "newest", "recent"},
		Colors:         []string{"red", "blue", "black", "white", "green", "gold", "silver", "pink", "purple"},
		RecencyMarkers: []string{"16", "17", "18", "pro", "max", "ultra", "latest"},
	}
}

// LoadVocabulary reads a YAML vocabulary file. Sections left empty in the
// file fall back to the built-in defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes a YAML vocabulary document.
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}

	def := DefaultVocabulary()
	if len(v.Corrections) == 0 {
		v.Corrections = def.Corrections
	}
	if len(v.CheapTerms) == 0 {
		v.CheapTerms = def.CheapTerms
	}
	if len(v.ExpensiveTerms) == 0 {
		v.ExpensiveTerms = def.ExpensiveTerms
	}
	if len(v.RecencyTerms) == 0 {
		v.RecencyTerms = def.RecencyTerms
	}
	if len(v.Colors) == 0 {
		v.Colors = def.Colors
	}
	if len(v.RecencyMarkers) == 0 {
		v.RecencyMarkers = def.RecencyMarkers
	}

	if err := v.Validate(); err != nil {
		return Vocabulary{}, err
	}
	return v.normalized(), nil
}

// Validate rejects vocabularies with blank entries.
func (v Vocabulary) Validate() error {
	for i, c := range v.Corrections {
		if strings.TrimSpace(c.Canonical) == "" {
			return fmt.Errorf("vocabulary: correction %d has no canonical term", i)
		}
		for _, m := range c.Misspellings {
			if strings.TrimSpace(m) == "" {
				return fmt.Errorf("vocabulary: blank misspelling for %q", c.Canonical)
			}
		}
	}
	lists := map[string][]string{
		"cheap_terms":     v.CheapTerms,
		"expensive_terms": v.ExpensiveTerms,
		"recency_terms":   v.RecencyTerms,
		"colors":          v.Colors,
		"recency_markers": v.RecencyMarkers,
	}
	for name, list := range lists {
		for _, term := range list {
			if strings.TrimSpace(term) == "" {
				return fmt.Errorf("vocabulary: blank entry in %s", name)
			}
		}
	}
	return nil
}

// normalized lowercases every entry so matching can run on lowercased text.
func (v Vocabulary) normalized() Vocabulary {
	out := Vocabulary{
		CheapTerms:     lowerAll(v.CheapTerms),
		ExpensiveTerms: lowerAll(v.ExpensiveTerms),
		RecencyTerms:   lowerAll(v.RecencyTerms),
		Colors:         lowerAll(v.Colors),
		RecencyMarkers: lowerAll(v.RecencyMarkers),
	}
	for _, c := range v.Corrections {
		out.Corrections = append(out.Corrections, Correction{
			Canonical:    strings.ToLower(c.Canonical),
			Misspellings: lowerAll(c.Misspellings),
		})
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
