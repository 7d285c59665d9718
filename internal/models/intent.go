package models

// PricePreference is the inferred price sensitivity of a query.
type PricePreference string

const (
	PriceCheap     PricePreference = "cheap"
	PriceExpensive PricePreference = "expensive"
	PriceNeutral   PricePreference = "neutral"
)

// IsValid reports whether p is a known preference.
func (p PricePreference) IsValid() bool {
	switch p {
	case PriceCheap, PriceExpensive, PriceNeutral:
		return true
	}
	return false
}

// Intent is the structured purchase intent inferred from one query.
// Category is only populated by the LLM path.
type Intent struct {
	PricePreference PricePreference `json:"pricePreference"`
	LatestPreferred bool            `json:"latestPreferred"`
	Color           *string         `json:"color"`
	Storage         *string         `json:"storage"`
	Category        *Category       `json:"category,omitempty"`
}

// NeutralIntent returns an intent with no preferences.
func NeutralIntent() Intent {
	return Intent{PricePreference: PriceNeutral}
}

// EnhancementMethod records which path produced an Enhancement.
type EnhancementMethod string

const (
	MethodLLM            EnhancementMethod = "llm"
	MethodLLMCached      EnhancementMethod = "llm-cached"
	MethodManualFallback EnhancementMethod = "manual-fallback"
)

// Enhancement is a corrected query paired with its inferred intent.
type Enhancement struct {
	CorrectedQuery string            `json:"corrected"`
	Intent         Intent            `json:"intent"`
	Method         EnhancementMethod `json:"method,omitempty"`
}
