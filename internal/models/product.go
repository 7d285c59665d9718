package models

import "time"

// Category enumerates the catalog categories.
type Category string

const (
	CategoryPhones      Category = "phones"
	CategoryLaptops     Category = "laptops"
	CategoryTablets     Category = "tablets"
	CategoryAccessories Category = "accessories"
	CategoryOther       Category = "other"
)

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategoryPhones,
	CategoryLaptops,
	CategoryTablets,
	CategoryAccessories,
	CategoryOther,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Supported currencies for catalog prices.
const (
	CurrencyRupee = "Rupee"
	CurrencyUSD   = "USD"
	CurrencyEUR   = "EUR"
)

// Product represents a catalog entry. Prices are integer currency units.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Category    Category  `db:"category" json:"category"`
	Price       int       `db:"price" json:"price"`
	MRP         int       `db:"mrp" json:"mrp"`
	Currency    string    `db:"currency" json:"currency"`
	Rating      float64   `db:"rating" json:"rating"`
	Stock       int       `db:"stock" json:"stock"`
	UnitsSold   int       `db:"units_sold" json:"unitsSold"`
	ReturnRate  float64   `db:"return_rate" json:"returnRate"`
	Complaints  int       `db:"complaints" json:"complaints"`
	Metadata    Metadata  `db:"metadata" json:"metadata"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// DiscountPercent returns the discount of Price against MRP as a percentage.
// It is 0 when MRP is not positive.
func (p *Product) DiscountPercent() float64 {
	if p.MRP <= 0 {
		return 0
	}
	return float64(p.MRP-p.Price) / float64(p.MRP) * 100
}

// CandidateQuery describes a bounded candidate lookup against the catalog store.
// A product matches when its title or description contains any of Terms
// (case-insensitive) or, when Category is set, when its category equals it.
type CandidateQuery struct {
	Terms    []string
	Category *Category
	Limit    int
}
