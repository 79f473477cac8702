package reports

import (
	"context"
)

// Repository reads the persisted valuation inputs.
// Implementations live in infrastructure/storage/postgres.
type Repository interface {
	// FetchValuationRows returns every article with an established cost
	// greater than zero, joined with its current stock quantity. The set
	// is intentionally unfiltered: classification must run on the whole
	// catalog before any filter is applied.
	FetchValuationRows(ctx context.Context) ([]Row, error)

	// FetchUncosted returns articles whose cost has never been
	// established (cost is NULL, not zero).
	FetchUncosted(ctx context.Context, filter UncostedFilter, page Page) ([]UncostedArticle, int64, error)
}
