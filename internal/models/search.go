package models

// SearchResultItem is the outward-facing projection of a ranked product.
// Field names follow the public search API contract.
type SearchResultItem struct {
	ProductID    string   `json:"productId"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	MRP          int      `json:"mrp"`
	SellingPrice int      `json:"SellingPrice"`
	Rating       float64  `json:"rating"`
	Metadata     Metadata `json:"Metadata"`
	Stock        int      `json:"stock"`
}

// SearchMeta describes how a search was served.
type SearchMeta struct {
	TotalResults      int               `json:"totalResults"`
	Query             string            `json:"query"`
	CorrectedQuery    string            `json:"correctedQuery,omitempty"`
	Intent            Intent            `json:"intent"`
	EnhancementMethod EnhancementMethod `json:"enhancementMethod"`
	Latency           string            `json:"latency"`
}

// SearchResult is the full payload returned by the search endpoint.
type SearchResult struct {
	Products []SearchResultItem `json:"products"`
	Meta     SearchMeta         `json:"search"`
}
