package groq

import (
	"fmt"
	"regexp"
	"strings"
)

var storagePattern = regexp.MustCompile(`(\d+)\s*(gb|tb)`)

var (
	pricePreferences = map[string]bool{"cheap": true, "expensive": true, "neutral": true}
	categories       = map[string]bool{"phones": true, "laptops": true, "tablets": true, "accessories": true, "other": true}
)

// Intent is the intent block returned by the model.
type Intent struct {
	PricePreference string  `json:"pricePreference"`
	LatestPreferred bool    `json:"latestPreferred"`
	Color           *string `json:"color"`
	Storage         *string `json:"storage"`
	Category        *string `json:"category,omitempty"`
}

// EnhanceResult is a corrected query and its intent.
type EnhanceResult struct {
	Corrected string `json:"corrected"`
	Intent    Intent `json:"intent"`
}

// normalize applies defaults for fields the model left out or blank and
// folds enum values to lower case.
func (r *EnhanceResult) normalize(query string) {
	r.Corrected = strings.TrimSpace(r.Corrected)
	if r.Corrected == "" {
		r.Corrected = query
	}
	r.Intent.PricePreference = strings.ToLower(strings.TrimSpace(r.Intent.PricePreference))
	if r.Intent.PricePreference == "" {
		r.Intent.PricePreference = "neutral"
	}
	r.Intent.Color = blankToNil(r.Intent.Color, strings.ToLower)
	r.Intent.Storage = normalizeStorage(r.Intent.Storage)
	r.Intent.Category = blankToNil(r.Intent.Category, strings.ToLower)
}

// normalizeStorage reduces "128 gb" style values to "128GB". Anything without
// a size and unit is dropped.
func normalizeStorage(s *string) *string {
	v := blankToNil(s, strings.ToLower)
	if v == nil {
		return nil
	}
	m := storagePattern.FindStringSubmatch(*v)
	if m == nil {
		return nil
	}
	out := m[1] + strings.ToUpper(m[2])
	return &out
}

// validate reports enum values outside the known sets. It expects a
// normalized result.
func (r *EnhanceResult) validate() error {
	if !pricePreferences[r.Intent.PricePreference] {
		return fmt.Errorf("unknown pricePreference %q", r.Intent.PricePreference)
	}
	if r.Intent.Category != nil && !categories[*r.Intent.Category] {
		return fmt.Errorf("unknown category %q", *r.Intent.Category)
	}
	return nil
}

func blankToNil(s *string, fold func(string) string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	v = fold(v)
	return &v
}

const systemPrompt = `You rewrite e-commerce search queries for an electronics store.

Tasks:
1. Fix spelling mistakes (e.g. "ifone" -> "iphone", "eyarfone" -> "earphone").
2. Extract the shopper's intent:
   - pricePreference: "cheap", "expensive" or "neutral". Hinglish words such as sasta, sastha and kam price mean cheap.
   - latestPreferred: true when the shopper wants the newest models.
   - color: the color mentioned, or null.
   - storage: the storage size mentioned such as "128GB", or null.
   - category: one of "phones", "laptops", "tablets", "accessories", "other", or null when unclear.

Reply with one JSON object and nothing else:
{"corrected": "...", "intent": {"pricePreference": "neutral", "latestPreferred": false, "color": null, "storage": null, "category": null}}`

const responseSchema = `{
  "type": "object",
  "required": ["corrected", "intent"],
  "properties": {
    "corrected": {"type": "string"},
    "intent": {
      "type": "object",
      "properties": {
        "pricePreference": {"type": "string"},
        "latestPreferred": {"type": "boolean"},
        "color": {"type": ["string", "null"]},
        "storage": {"type": ["string", "null"]},
        "category": {"type": ["string", "null"]}
      }
    }
  }
}`
