package dto

import (
	"time"

	"kardex/internal/core/types"
	"kardex/internal/domain/documents/purchase"
)

// PurchaseLineRequest is one requested article movement. Quantity and unit
// cost accept JSON numbers or numeric strings.
type PurchaseLineRequest struct {
	ArticleRef string      `json:"articleRef" binding:"required"`
	Quantity   types.Money `json:"quantity"`
	UnitCost   types.Money `json:"unitCost"`
}

// RegisterPurchaseRequest is the POST /purchases body.
type RegisterPurchaseRequest struct {
	SupplierRef string                `json:"supplierRef" binding:"required"`
	Date        time.Time             `json:"date" binding:"required"`
	Note        string                `json:"note"`
	Lines       []PurchaseLineRequest `json:"lines" binding:"required"`
}

// ToInput converts the request to the domain input.
func (r *RegisterPurchaseRequest) ToInput(actingUser string) purchase.RegisterInput {
	in := purchase.RegisterInput{
		SupplierRef: r.SupplierRef,
		Date:        r.Date,
		Note:        r.Note,
		ActingUser:  actingUser,
		Lines:       make([]purchase.InputLine, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, purchase.InputLine{
			ArticleRef: l.ArticleRef,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
		})
	}
	return in
}

// HeaderChangesRequest carries the optional header part of an edit.
type HeaderChangesRequest struct {
	Date        *time.Time `json:"date"`
	SupplierRef *string    `json:"supplierRef"`
	Note        *string    `json:"note"`
	Status      *string    `json:"status"`
}

// LineCorrectionRequest replaces quantity and unit cost of one line.
type LineCorrectionRequest struct {
	LineNo   int         `json:"lineNo" binding:"required"`
	Quantity types.Money `json:"quantity"`
	UnitCost types.Money `json:"unitCost"`
}

// EditPurchaseRequest is the PATCH /purchases/:number body.
type EditPurchaseRequest struct {
	Header   *HeaderChangesRequest   `json:"header"`
	Lines    []LineCorrectionRequest `json:"lines"`
	NewLines []PurchaseLineRequest   `json:"newLines"`
}

// ToInput converts the request to the domain input.
func (r *EditPurchaseRequest) ToInput(documentNumber, actingUser string) purchase.EditInput {
	in := purchase.EditInput{
		DocumentNumber: documentNumber,
		ActingUser:     actingUser,
	}
	if r.Header != nil {
		header := &purchase.HeaderChanges{
			Date:        r.Header.Date,
			SupplierRef: r.Header.SupplierRef,
			Note:        r.Header.Note,
		}
		if r.Header.Status != nil {
			status := purchase.Status(*r.Header.Status)
			header.Status = &status
		}
		in.Header = header
	}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, purchase.LineCorrection{
			LineNo:   l.LineNo,
			Quantity: l.Quantity,
			UnitCost: l.UnitCost,
		})
	}
	for _, l := range r.NewLines {
		in.NewLines = append(in.NewLines, purchase.InputLine{
			ArticleRef: l.ArticleRef,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
		})
	}
	return in
}
