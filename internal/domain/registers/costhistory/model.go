// Package costhistory provides the append-only cost audit trail.
// Entries are never mutated or deleted; the sequence of entries for one
// article must stay replayable to the article's current cost.
package costhistory

import (
	"time"

	"kardex/internal/core/types"
)

// Kind distinguishes ordinary purchase postings from compensating edits.
type Kind string

const (
	KindPurchase         Kind = "purchase"
	KindManualAdjustment Kind = "manual_adjustment"
)

// Entry is one immutable audit record of a cost-affecting event.
// The writer supplies the full before/movement/after snapshot; the recorder
// persists it verbatim and never recomputes anything.
type Entry struct {
	// ID is assigned by storage (auto-incrementing).
	ID int64 `db:"id" json:"id"`

	ArticleRef string `db:"article_ref" json:"articleRef"`

	// DocumentID references the originating purchase document.
	DocumentID     int64  `db:"document_id" json:"documentId"`
	DocumentNumber string `db:"document_number" json:"documentNumber"`

	// LineNo orders entries created within the same transaction.
	// Wall-clock time is display-only: corrections may be posted out of
	// chronological order relative to their original date.
	LineNo int `db:"line_no" json:"lineNo"`

	Kind Kind `db:"kind" json:"kind"`

	QuantityBefore types.Money `db:"quantity_before" json:"quantityBefore"`
	CostBefore     types.Money `db:"cost_before" json:"costBefore"`
	ValueBefore    types.Money `db:"value_before" json:"valueBefore"`

	QuantityDelta types.Money `db:"quantity_delta" json:"quantityDelta"`
	CostMovement  types.Money `db:"cost_movement" json:"costMovement"`
	ValueDelta    types.Money `db:"value_delta" json:"valueDelta"`

	QuantityAfter types.Money `db:"quantity_after" json:"quantityAfter"`
	CostAfter     types.Money `db:"cost_after" json:"costAfter"`
	ValueAfter    types.Money `db:"value_after" json:"valueAfter"`

	ActingUser string    `db:"acting_user" json:"actingUser"`
	Note       string    `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
