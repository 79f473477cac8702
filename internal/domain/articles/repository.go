package articles

import (
	"context"

	"kardex/internal/core/types"
)

// Repository is the persistence contract for article cost state.
// Implementations live in infrastructure/storage/postgres.
type Repository interface {
	// GetForUpdate reads the article's cost row with a row lock, so that
	// concurrent writers against the same article serialize on it.
	// Returns NotFoundError for an unknown ref.
	GetForUpdate(ctx context.Context, ref string) (*Article, error)

	// UpdateCost replaces the stored weighted-average cost. Must be called
	// inside the same transaction that holds the row lock.
	UpdateCost(ctx context.Context, ref string, cost types.Money, actingUser string) error

	// TouchLastPurchase records the most recent purchase date.
	TouchLastPurchase(ctx context.Context, ref string) error
}

// StockLedger is the external, read-only quantity source.
// The costing engine never writes quantity - it is owned by a separate
// movement ledger outside this module.
type StockLedger interface {
	// GetQuantity returns the current on-hand quantity for an article.
	GetQuantity(ctx context.Context, ref string) (types.Money, error)
}

// Catalog is the external catalog lookup used for validation and for
// valuation filters.
type Catalog interface {
	ArticleExists(ctx context.Context, ref string) (bool, error)
	GetSubcategory(ctx context.Context, ref string) (int64, error)
}
