// Package articles defines the cost-bearing catalog item and the contracts
// the costing engine consumes around it.
package articles

import (
	"time"

	"kardex/internal/core/types"
)

// Article is a cost-bearing catalog item as the costing engine sees it.
// The engine owns the weighted-average unit cost exclusively; on-hand
// quantity belongs to the external stock ledger and is read-only here.
type Article struct {
	// Ref is the article identifier (SKU).
	Ref string `db:"article_ref" json:"articleRef"`

	// SubcategoryID groups articles for valuation filters.
	SubcategoryID *int64 `db:"subcategory_id" json:"subcategoryId,omitempty"`

	// Cost is the current weighted-average unit cost.
	// Invalid means the article has never been costed - this is a distinct
	// state from a cost of zero and is reported separately as "uncosted".
	Cost types.NullMoney `db:"cost" json:"cost"`

	// LastPurchaseAt is the date of the most recent purchase movement.
	LastPurchaseAt *time.Time `db:"last_purchase_at" json:"lastPurchaseAt,omitempty"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`
}

// CostOrZero returns the stored cost, or zero when the article is uncosted.
// Averaging an inbound movement into an uncosted article starts from zero.
func (a *Article) CostOrZero() types.Money {
	if a.Cost.Valid {
		return a.Cost.Decimal
	}
	return types.Zero()
}

// IsCosted reports whether a cost has ever been established.
func (a *Article) IsCosted() bool {
	return a.Cost.Valid
}
