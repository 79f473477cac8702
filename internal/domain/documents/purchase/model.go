// Package purchase provides the purchase document service: registration of
// new purchases and compensating edits to already-posted ones.
package purchase

import (
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/types"
)

// DocTypePurchase is the document-type key used for number allocation.
const DocTypePurchase = "PURCHASE"

// Status of a purchase document header.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusCancelled:
		return true
	}
	return false
}

// Direction of a line movement. Purchases are always inbound.
type Direction string

const DirectionInbound Direction = "in"

// Document is a purchase transaction header. Its identity (internal id and
// document number) is immutable; header fields and status may be edited.
type Document struct {
	// ID is the internal identifier, allocated from the records counter.
	ID int64 `db:"id" json:"id"`

	// Number is the human-readable document number (e.g. COM000042).
	Number string `db:"number" json:"number"`

	// DocType discriminates document kinds sharing the documents table.
	DocType string `db:"doc_type" json:"docType"`

	SupplierRef string    `db:"supplier_ref" json:"supplierRef"`
	Date        time.Time `db:"date" json:"date"`
	Note        string    `db:"note" json:"note,omitempty"`
	Status      Status    `db:"status" json:"status"`

	// TotalValue is the cached sum of line values, maintained on every
	// line change.
	TotalValue types.Money `db:"total_value" json:"totalValue"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`

	Lines []Line `db:"-" json:"lines,omitempty"`
}

// Line is one article movement within a document, keyed (document, line_no).
// Lines are corrected in place or appended, never physically deleted.
type Line struct {
	DocumentID int64       `db:"document_id" json:"documentId"`
	LineNo     int         `db:"line_no" json:"lineNo"`
	ArticleRef string      `db:"article_ref" json:"articleRef"`
	Quantity   types.Money `db:"quantity" json:"quantity"`
	UnitCost   types.Money `db:"unit_cost" json:"unitCost"`
	Value      types.Money `db:"value" json:"value"`
	Direction  Direction   `db:"direction" json:"direction"`
}

// RecalculateTotal updates the cached total from the loaded lines.
func (d *Document) RecalculateTotal() {
	total := types.Zero()
	for _, line := range d.Lines {
		total = total.Add(line.Value)
	}
	d.TotalValue = total
}

// --- Operation inputs and results ---

// InputLine is one requested article movement.
type InputLine struct {
	ArticleRef string      `json:"articleRef"`
	Quantity   types.Money `json:"quantity"`
	UnitCost   types.Money `json:"unitCost"`
}

// RegisterInput is the RegisterPurchase request.
type RegisterInput struct {
	SupplierRef string      `json:"supplierRef"`
	Date        time.Time   `json:"date"`
	Note        string      `json:"note"`
	ActingUser  string      `json:"actingUser"`
	Lines       []InputLine `json:"lines"`
}

// Validate checks preconditions before any write occurs - including before
// any sequence allocation.
func (in *RegisterInput) Validate() error {
	if in.SupplierRef == "" {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierRef")
	}
	if in.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	if len(in.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range in.Lines {
		if line.ArticleRef == "" {
			return apperror.NewValidation("article is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity.Sign() <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitCost.Sign() <= 0 {
			return apperror.NewValidation("unit cost must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// LineResult reports the cost trajectory of one posted line.
type LineResult struct {
	LineNo         int         `json:"lineNo"`
	ArticleRef     string      `json:"articleRef"`
	QuantityBefore types.Money `json:"quantityBefore"`
	CostBefore     types.Money `json:"costBefore"`
	CostAfter      types.Money `json:"costAfter"`
}

// RegisterResult is the RegisterPurchase response.
type RegisterResult struct {
	DocumentID     int64        `json:"documentId"`
	DocumentNumber string       `json:"documentNumber"`
	TotalValue     types.Money  `json:"totalValue"`
	Lines          []LineResult `json:"lines"`
}

// HeaderChanges is the optional header part of an edit; any subset of the
// fields may be replaced.
type HeaderChanges struct {
	Date        *time.Time `json:"date,omitempty"`
	SupplierRef *string    `json:"supplierRef,omitempty"`
	Note        *string    `json:"note,omitempty"`
	Status      *Status    `json:"status,omitempty"`
}

// Empty reports whether no header field is being changed.
func (h *HeaderChanges) Empty() bool {
	return h == nil || (h.Date == nil && h.SupplierRef == nil && h.Note == nil && h.Status == nil)
}

// LineCorrection replaces the quantity and unit cost of an existing line.
type LineCorrection struct {
	LineNo   int         `json:"lineNo"`
	Quantity types.Money `json:"quantity"`
	UnitCost types.Money `json:"unitCost"`
}

// EditInput is the EditPurchase request.
type EditInput struct {
	DocumentNumber string           `json:"documentNumber"`
	Header         *HeaderChanges   `json:"header,omitempty"`
	Lines          []LineCorrection `json:"lines,omitempty"`
	NewLines       []InputLine      `json:"newLines,omitempty"`
	ActingUser     string           `json:"actingUser"`
}

// Validate checks the edit request shape before any read or write.
func (in *EditInput) Validate() error {
	if in.DocumentNumber == "" {
		return apperror.NewValidation("document number is required").
			WithDetail("field", "documentNumber")
	}
	if in.Header.Empty() && len(in.Lines) == 0 && len(in.NewLines) == 0 {
		return apperror.NewValidation("nothing to update")
	}
	if in.Header != nil && in.Header.Status != nil && !in.Header.Status.Valid() {
		return apperror.NewValidation("invalid status").
			WithDetail("status", string(*in.Header.Status))
	}
	for _, lc := range in.Lines {
		if lc.LineNo <= 0 {
			return apperror.NewValidation("line number must be positive").
				WithDetail("lineNo", lc.LineNo)
		}
		if lc.Quantity.Sign() <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("lineNo", lc.LineNo)
		}
		if lc.UnitCost.Sign() <= 0 {
			return apperror.NewValidation("unit cost must be positive").
				WithDetail("lineNo", lc.LineNo)
		}
	}
	for i, nl := range in.NewLines {
		if nl.ArticleRef == "" {
			return apperror.NewValidation("article is required").
				WithDetail("field", "newLines").
				WithDetail("index", i)
		}
		if nl.Quantity.Sign() <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "newLines").
				WithDetail("article", nl.ArticleRef)
		}
		if nl.UnitCost.Sign() <= 0 {
			return apperror.NewValidation("unit cost must be positive").
				WithDetail("field", "newLines").
				WithDetail("article", nl.ArticleRef)
		}
	}
	return nil
}

// EditResult is the EditPurchase response.
type EditResult struct {
	UpdatedLines  []Line      `json:"updatedLines"`
	InsertedLines []Line      `json:"insertedLines"`
	HeaderUpdated bool        `json:"headerUpdated"`
	TotalValue    types.Money `json:"totalValue"`
}

// History is the GetPurchaseHistory response: a header with its lines and
// the audit entries the document produced.
type History struct {
	Header *Document `json:"header"`
	Lines  []Line    `json:"lines"`
}
