package purchase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"kardex/internal/core/apperror"
	appctx "kardex/internal/core/context"
	"kardex/internal/domain/costing"
	"kardex/internal/domain/registers/costhistory"
	"kardex/pkg/logger"
)

// Edit applies a compensating edit to an already-posted purchase.
//
// Line corrections never re-derive history: each one algebraically removes
// the original movement's contribution from the article's current position
// and re-adds the corrected one (see costing.ReverseReapply). Corrections
// are processed in line-number order inside one transaction holding the
// article row lock, which serializes multiple corrections touching the same
// article within a request. Editing lines of the same article across two
// concurrent requests serializes on that same lock at the store level.
func (s *Service) Edit(ctx context.Context, in EditInput) (*EditResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	actingUser := in.ActingUser
	if actingUser == "" {
		actingUser = appctx.GetUserID(ctx)
	}

	var result *EditResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByNumber(ctx, in.DocumentNumber)
		if err != nil {
			return err
		}
		if doc.DocType != DocTypePurchase {
			return apperror.NewInvalidState("document is not a purchase").
				WithDetail("documentNumber", in.DocumentNumber).
				WithDetail("docType", doc.DocType)
		}

		result = &EditResult{
			UpdatedLines:  make([]Line, 0, len(in.Lines)),
			InsertedLines: make([]Line, 0, len(in.NewLines)),
		}

		headerBefore := *doc
		if !in.Header.Empty() {
			applyHeaderChanges(doc, in.Header)
			doc.UpdatedBy = actingUser
			doc.UpdatedAt = time.Now().UTC()
			if err := s.repo.UpdateHeader(ctx, doc); err != nil {
				return err
			}
			if err := s.changes.RecordHeaderChange(ctx, doc.ID, actingUser, &headerBefore, doc); err != nil {
				return err
			}
			result.HeaderUpdated = true
		}

		// Stable processing order keeps same-article corrections
		// deterministic within one request.
		corrections := make([]LineCorrection, len(in.Lines))
		copy(corrections, in.Lines)
		sort.Slice(corrections, func(i, j int) bool {
			return corrections[i].LineNo < corrections[j].LineNo
		})

		for _, correction := range corrections {
			updated, err := s.correctLine(ctx, doc, correction, actingUser)
			if err != nil {
				return err
			}
			result.UpdatedLines = append(result.UpdatedLines, *updated)
		}

		if len(in.NewLines) > 0 {
			existing, err := s.repo.GetLines(ctx, doc.ID)
			if err != nil {
				return err
			}
			present := make(map[string]bool, len(existing))
			nextLineNo := 0
			for _, line := range existing {
				present[line.ArticleRef] = true
				if line.LineNo > nextLineNo {
					nextLineNo = line.LineNo
				}
			}

			for _, newLine := range in.NewLines {
				if present[newLine.ArticleRef] {
					return apperror.NewConflict("article already has a line in this document; correct the existing line instead").
						WithDetail("articleRef", newLine.ArticleRef).
						WithDetail("documentNumber", doc.Number)
				}
				nextLineNo++
				if _, err := s.postLine(ctx, doc, nextLineNo, newLine, actingUser); err != nil {
					return err
				}
				present[newLine.ArticleRef] = true
				inserted, err := s.repo.GetLine(ctx, doc.ID, nextLineNo)
				if err != nil {
					return err
				}
				result.InsertedLines = append(result.InsertedLines, *inserted)
			}
		}

		if len(result.UpdatedLines) > 0 || len(result.InsertedLines) > 0 {
			lines, err := s.repo.GetLines(ctx, doc.ID)
			if err != nil {
				return err
			}
			doc.Lines = lines
			doc.RecalculateTotal()
			if err := s.repo.UpdateTotal(ctx, doc.ID, doc.TotalValue); err != nil {
				return err
			}
			if err := s.syncQueue.EnqueueSync(ctx, doc.ID, doc.Number); err != nil {
				return err
			}
		}
		result.TotalValue = doc.TotalValue

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase edited",
		"number", in.DocumentNumber,
		"header_updated", result.HeaderUpdated,
		"lines_updated", len(result.UpdatedLines),
		"lines_inserted", len(result.InsertedLines))

	return result, nil
}

// correctLine reverses one posted line's contribution and reapplies the
// corrected values against the article's current position.
func (s *Service) correctLine(ctx context.Context, doc *Document, correction LineCorrection, actingUser string) (*Line, error) {
	original, err := s.repo.GetLine(ctx, doc.ID, correction.LineNo)
	if err != nil {
		return nil, err
	}

	article, err := s.articles.GetForUpdate(ctx, original.ArticleRef)
	if err != nil {
		return nil, err
	}
	quantityCurrent, err := s.stock.GetQuantity(ctx, original.ArticleRef)
	if err != nil {
		return nil, err
	}

	current := costing.Position{Quantity: quantityCurrent, UnitCost: article.CostOrZero()}
	originalMove := costing.Movement{Quantity: original.Quantity, UnitCost: original.UnitCost}
	correctedMove := costing.Movement{Quantity: correction.Quantity, UnitCost: correction.UnitCost}
	after := costing.ReverseReapply(current, originalMove, correctedMove)

	updated := *original
	updated.Quantity = correction.Quantity
	updated.UnitCost = correction.UnitCost
	updated.Value = correctedMove.Value()
	if err := s.repo.UpdateLine(ctx, &updated); err != nil {
		return nil, err
	}

	if err := s.articles.UpdateCost(ctx, original.ArticleRef, after.UnitCost, actingUser); err != nil {
		return nil, err
	}

	valueDelta := correctedMove.Value().Sub(originalMove.Value())
	entry := &costhistory.Entry{
		ArticleRef:     original.ArticleRef,
		DocumentID:     doc.ID,
		DocumentNumber: doc.Number,
		LineNo:         correction.LineNo,
		Kind:           costhistory.KindManualAdjustment,
		QuantityBefore: current.Quantity,
		CostBefore:     current.UnitCost,
		ValueBefore:    current.Value(),
		QuantityDelta:  correctedMove.Quantity.Sub(originalMove.Quantity),
		CostMovement:   correctedMove.UnitCost,
		ValueDelta:     valueDelta,
		QuantityAfter:  after.Quantity,
		CostAfter:      after.UnitCost,
		ValueAfter:     after.Value(),
		ActingUser:     actingUser,
		Note: fmt.Sprintf("Adjustment %s line %d: qty %s @ %s -> qty %s @ %s (value %s)",
			doc.Number, correction.LineNo,
			originalMove.Quantity, originalMove.UnitCost,
			correctedMove.Quantity, correctedMove.UnitCost,
			valueDelta),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, err
	}

	return &updated, nil
}

func applyHeaderChanges(doc *Document, changes *HeaderChanges) {
	if changes.Date != nil {
		doc.Date = *changes.Date
	}
	if changes.SupplierRef != nil {
		doc.SupplierRef = *changes.SupplierRef
	}
	if changes.Note != nil {
		doc.Note = *changes.Note
	}
	if changes.Status != nil {
		doc.Status = *changes.Status
	}
}
