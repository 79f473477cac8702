package costhistory

import (
	"context"
	"time"
)

// ListFilter narrows cost history reads.
type ListFilter struct {
	DocumentID *int64
	Kind       *Kind
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// Repository is the append-only persistence contract.
// No update or delete capability is exposed, by contract.
type Repository interface {
	// Append persists one entry. Must run inside the writer's transaction
	// so a rollback removes the entry along with the movement it mirrors.
	Append(ctx context.Context, entry *Entry) error

	// ListByArticle returns entries for an article, ordered by creation.
	ListByArticle(ctx context.Context, articleRef string, filter ListFilter) ([]Entry, error)

	// ListByDocument returns entries that originate from a document.
	ListByDocument(ctx context.Context, documentID int64) ([]Entry, error)
}
