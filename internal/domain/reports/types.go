// Package reports provides inventory valuation and ABC classification.
package reports

import (
	"time"

	"kardex/internal/core/types"
)

// Band is a value classification band.
type Band string

const (
	BandA Band = "A"
	BandB Band = "B"
	BandC Band = "C"
)

// Valid reports whether b is a known band.
func (b Band) Valid() bool {
	return b == BandA || b == BandB || b == BandC
}

// Row is the raw per-article valuation input read from storage:
// current cost (engine-owned) joined with the external stock quantity.
type Row struct {
	ArticleRef     string      `db:"article_ref"`
	SubcategoryID  *int64      `db:"subcategory_id"`
	Quantity       types.Money `db:"quantity"`
	Cost           types.Money `db:"cost"`
	LastPurchaseAt *time.Time  `db:"last_purchase_at"`
}

// Item is one classified valuation line.
type Item struct {
	ArticleRef     string      `json:"articleRef"`
	SubcategoryID  *int64      `json:"subcategoryId,omitempty"`
	Quantity       types.Money `json:"quantity"`
	Cost           types.Money `json:"cost"`
	Value          types.Money `json:"value"`
	CumulativeVal  types.Money `json:"cumulativeValue"`
	CumulativePct  types.Money `json:"cumulativePct"`
	Band           Band        `json:"band"`
	LastPurchaseAt *time.Time  `json:"lastPurchaseAt,omitempty"`
}

// Filters narrow the valuation view. Filtering happens after classification,
// never before - band boundaries are stable across filtered views.
type Filters struct {
	SubcategoryID *int64     `json:"subcategoryId,omitempty"`
	DateFrom      *time.Time `json:"dateFrom,omitempty"`
	DateTo        *time.Time `json:"dateTo,omitempty"`
	Band          *Band      `json:"band,omitempty"`
	StockOnly     bool       `json:"stockOnly,omitempty"`
}

// Page selects a slice of the filtered result.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// BandTotal aggregates one band over the unfiltered set.
type BandTotal struct {
	Count int         `json:"count"`
	Value types.Money `json:"value"`
}

// Totals are global, computed over the unfiltered classified set so UI
// summaries are never derived from a paginated slice.
type Totals struct {
	Count      int                `json:"count"`
	TotalValue types.Money        `json:"totalValue"`
	Bands      map[Band]BandTotal `json:"bands"`
}

// Result is the GetValuation response.
type Result struct {
	Items         []Item `json:"items"`
	FilteredCount int    `json:"filteredCount"`
	Totals        Totals `json:"globalTotals"`
	Page          Page   `json:"page"`
}

// UncostedArticle is an article with no established cost. It is reported
// separately and never classified.
type UncostedArticle struct {
	ArticleRef    string      `db:"article_ref" json:"articleRef"`
	SubcategoryID *int64      `db:"subcategory_id" json:"subcategoryId,omitempty"`
	Quantity      types.Money `db:"quantity" json:"quantity"`
}

// UncostedFilter narrows the uncosted listing.
type UncostedFilter struct {
	SubcategoryID *int64 `json:"subcategoryId,omitempty"`
	StockOnly     bool   `json:"stockOnly,omitempty"`
}
