package purchase

import (
	"context"
	"time"

	"kardex/internal/core/types"
)

// ListFilter narrows purchase document listings.
type ListFilter struct {
	SupplierRef *string
	Status      *Status
	DateFrom    *time.Time
	DateTo      *time.Time
	Search      string
	OrderBy     string
	Limit       int
	Offset      int
}

// ListResult contains paginated documents.
type ListResult struct {
	Items      []*Document `json:"items"`
	TotalCount int64       `json:"totalCount"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}

// Repository is the persistence contract for purchase documents.
// Implementations live in infrastructure/storage/postgres.
type Repository interface {
	// Create inserts the header. ID and number are already allocated.
	Create(ctx context.Context, doc *Document) error

	// GetByNumber retrieves a header by its document number.
	GetByNumber(ctx context.Context, number string) (*Document, error)

	// GetByID retrieves a header by internal id.
	GetByID(ctx context.Context, id int64) (*Document, error)

	// UpdateHeader persists header field changes (date, supplier, note,
	// status, total, audit columns). Identity columns are never touched.
	UpdateHeader(ctx context.Context, doc *Document) error

	// GetLines returns all lines of a document ordered by line number.
	GetLines(ctx context.Context, documentID int64) ([]Line, error)

	// GetLine returns a single line. NotFoundError when absent.
	GetLine(ctx context.Context, documentID int64, lineNo int) (*Line, error)

	// InsertLine appends one line.
	InsertLine(ctx context.Context, line *Line) error

	// UpdateLine replaces the quantity/cost/value of an existing line.
	UpdateLine(ctx context.Context, line *Line) error

	// UpdateTotal refreshes the cached document total.
	UpdateTotal(ctx context.Context, documentID int64, total types.Money) error

	// List retrieves documents with filtering and pagination.
	List(ctx context.Context, filter ListFilter) (ListResult, error)
}

// SyncQueue enqueues a post-commit storefront synchronization request.
// The transactional outbox implementation persists the event inside the
// document's transaction; delivery happens asynchronously after commit and
// its failures never reach the caller.
type SyncQueue interface {
	EnqueueSync(ctx context.Context, documentID int64, documentNumber string) error
}

// ChangeRecorder stores a before/after snapshot of header edits.
type ChangeRecorder interface {
	RecordHeaderChange(ctx context.Context, documentID int64, actingUser string, before, after *Document) error
}
