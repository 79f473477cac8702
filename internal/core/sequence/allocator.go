// Package sequence provides domain contracts for identifier allocation.
// Implementations live in the infrastructure layer.
package sequence

import (
	"context"
	"fmt"
)

// CounterRecords is the counter that issues internal record identifiers.
const CounterRecords = "records"

// Allocator issues globally unique, monotonically increasing values.
//
// NextValue must serialize concurrent callers for the same counter name so
// that no two callers ever observe the same value. The allocation happens
// inside the caller's transaction: a rollback of the caller also rolls back
// the allocation. Gaps are therefore possible, duplicates are not.
type Allocator interface {
	// NextValue returns the successor of the named counter.
	// A missing counter row is a ConfigurationError - counters are
	// provisioned out of band, never created on the fly.
	NextValue(ctx context.Context, counterName string) (int64, error)

	// NextDocumentNumber returns the next human-readable document number
	// for a document type, e.g. type "PURCHASE" -> "COM000042".
	// The prefix and pad width come from the document-type counter row.
	NextDocumentNumber(ctx context.Context, docType string) (string, error)
}

// FormatDocumentNumber renders a document number from its counter row
// attributes: a type prefix followed by a fixed-width zero-padded value.
func FormatDocumentNumber(prefix string, padWidth int, value int64) string {
	if padWidth <= 0 {
		padWidth = 6
	}
	return fmt.Sprintf("%s%0*d", prefix, padWidth, value)
}
