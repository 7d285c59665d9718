package ranking

import (
	"sort"
	"strings"
)

// Corrector fixes known misspellings of domain terms.
//
// Replacement is a single left-to-right pass over the lowercased query. At
// each position the longest matching entry wins; equal lengths are resolved by
// vocabulary declaration order. Every canonical term is also registered as an
// identity entry, so already-correct words are left alone and replaced text is
// never scanned again.
type Corrector struct {
	replacer *strings.Replacer
}

type replacement struct {
	from, to string
	order    int
}

// NewCorrector builds a corrector from the vocabulary's correction table.
func NewCorrector(vocab Vocabulary) *Corrector {
	vocab = vocab.normalized()

	seen := make(map[string]bool)
	var entries []replacement
	add := func(from, to string) {
		if from == "" || seen[from] {
			return
		}
		seen[from] = true
		entries = append(entries, replacement{from: from, to: to, order: len(entries)})
	}
	for _, c := range vocab.Corrections {
		add(c.Canonical, c.Canonical)
	}
	for _, c := range vocab.Corrections {
		for _, m := range c.Misspellings {
			add(m, c.Canonical)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].from) > len(entries[j].from)
	})

	pairs := make([]string, 0, len(entries)*2)
	for _, e := range entries {
		pairs = append(pairs, e.from, e.to)
	}
	return &Corrector{replacer: strings.NewReplacer(pairs...)}
}

// Correct returns the lowercased query with misspellings replaced.
func (c *Corrector) Correct(query string) string {
	return c.replacer.Replace(strings.ToLower(query))
}
