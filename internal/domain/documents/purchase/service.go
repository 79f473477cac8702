package purchase

import (
	"context"
	"fmt"
	"time"

	appctx "kardex/internal/core/context"
	"kardex/internal/core/sequence"
	"kardex/internal/core/tx"
	"kardex/internal/core/types"
	"kardex/internal/domain/articles"
	"kardex/internal/domain/costing"
	"kardex/internal/domain/registers/costhistory"
	"kardex/pkg/logger"
)

// Service provides business operations for purchase documents.
type Service struct {
	repo      Repository
	articles  articles.Repository
	stock     articles.StockLedger
	catalog   articles.Catalog
	history   costhistory.Repository
	allocator sequence.Allocator
	txManager tx.Manager
	syncQueue SyncQueue
	changes   ChangeRecorder
}

// NewService creates a new purchase service.
func NewService(
	repo Repository,
	articleRepo articles.Repository,
	stock articles.StockLedger,
	catalog articles.Catalog,
	history costhistory.Repository,
	allocator sequence.Allocator,
	txManager tx.Manager,
	syncQueue SyncQueue,
	changes ChangeRecorder,
) *Service {
	return &Service{
		repo:      repo,
		articles:  articleRepo,
		stock:     stock,
		catalog:   catalog,
		history:   history,
		allocator: allocator,
		txManager: txManager,
		syncQueue: syncQueue,
		changes:   changes,
	}
}

// Register posts a new purchase document.
//
// Validation runs before any write - a precondition failure allocates no
// sequence value. The whole posting is one transaction: header, lines, cost
// updates, and audit entries commit together or not at all. The storefront
// sync request rides the same transaction via the outbox; its delivery is
// asynchronous and cannot un-commit the purchase.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	actingUser := in.ActingUser
	if actingUser == "" {
		actingUser = appctx.GetUserID(ctx)
	}

	var result *RegisterResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		docID, err := s.allocator.NextValue(ctx, sequence.CounterRecords)
		if err != nil {
			return err
		}
		number, err := s.allocator.NextDocumentNumber(ctx, DocTypePurchase)
		if err != nil {
			return err
		}

		total := types.Zero()
		for _, line := range in.Lines {
			total = total.Add(line.Quantity.Mul(line.UnitCost))
		}

		now := time.Now().UTC()
		doc := &Document{
			ID:          docID,
			Number:      number,
			DocType:     DocTypePurchase,
			SupplierRef: in.SupplierRef,
			Date:        in.Date,
			Note:        in.Note,
			Status:      StatusActive,
			TotalValue:  total,
			CreatedAt:   now,
			UpdatedAt:   now,
			CreatedBy:   actingUser,
			UpdatedBy:   actingUser,
		}
		if err := s.repo.Create(ctx, doc); err != nil {
			return err
		}

		lineResults := make([]LineResult, 0, len(in.Lines))
		for i, inputLine := range in.Lines {
			lr, err := s.postLine(ctx, doc, i+1, inputLine, actingUser)
			if err != nil {
				return err
			}
			lineResults = append(lineResults, lr)
		}

		if err := s.syncQueue.EnqueueSync(ctx, doc.ID, doc.Number); err != nil {
			return err
		}

		result = &RegisterResult{
			DocumentID:     doc.ID,
			DocumentNumber: doc.Number,
			TotalValue:     total,
			Lines:          lineResults,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase registered",
		"document_id", result.DocumentID,
		"number", result.DocumentNumber,
		"lines", len(result.Lines),
		"total", result.TotalValue)

	return result, nil
}

// postLine posts one inbound movement: reads the article position, computes
// the new weighted-average cost, persists the line, updates the article and
// appends the audit entry. Shared by registration and new-line insertion.
func (s *Service) postLine(ctx context.Context, doc *Document, lineNo int, in InputLine, actingUser string) (LineResult, error) {
	article, err := s.articles.GetForUpdate(ctx, in.ArticleRef)
	if err != nil {
		return LineResult{}, err
	}

	quantityBefore, err := s.stock.GetQuantity(ctx, in.ArticleRef)
	if err != nil {
		return LineResult{}, err
	}

	before := costing.Position{Quantity: quantityBefore, UnitCost: article.CostOrZero()}
	movement := costing.Movement{Quantity: in.Quantity, UnitCost: in.UnitCost}
	after := before.Apply(movement)

	line := &Line{
		DocumentID: doc.ID,
		LineNo:     lineNo,
		ArticleRef: in.ArticleRef,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		Value:      movement.Value(),
		Direction:  DirectionInbound,
	}
	if err := s.repo.InsertLine(ctx, line); err != nil {
		return LineResult{}, err
	}

	if err := s.articles.UpdateCost(ctx, in.ArticleRef, after.UnitCost, actingUser); err != nil {
		return LineResult{}, err
	}
	if err := s.articles.TouchLastPurchase(ctx, in.ArticleRef); err != nil {
		return LineResult{}, err
	}

	entry := &costhistory.Entry{
		ArticleRef:     in.ArticleRef,
		DocumentID:     doc.ID,
		DocumentNumber: doc.Number,
		LineNo:         lineNo,
		Kind:           costhistory.KindPurchase,
		QuantityBefore: before.Quantity,
		CostBefore:     before.UnitCost,
		ValueBefore:    before.Value(),
		QuantityDelta:  movement.Quantity,
		CostMovement:   movement.UnitCost,
		ValueDelta:     movement.Value(),
		QuantityAfter:  after.Quantity,
		CostAfter:      after.UnitCost,
		ValueAfter:     after.Value(),
		ActingUser:     actingUser,
		Note:           fmt.Sprintf("Purchase %s line %d", doc.Number, lineNo),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return LineResult{}, err
	}

	return LineResult{
		LineNo:         lineNo,
		ArticleRef:     in.ArticleRef,
		QuantityBefore: before.Quantity,
		CostBefore:     before.UnitCost,
		CostAfter:      after.UnitCost,
	}, nil
}

// GetHistory returns a document header with its lines.
func (s *Service) GetHistory(ctx context.Context, documentNumber string) (*History, error) {
	doc, err := s.repo.GetByNumber(ctx, documentNumber)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return &History{Header: doc, Lines: lines}, nil
}

// List retrieves purchase documents with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

// GetCostHistory returns the audit trail for one article.
func (s *Service) GetCostHistory(ctx context.Context, articleRef string, filter costhistory.ListFilter) ([]costhistory.Entry, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.history.ListByArticle(ctx, articleRef, filter)
}
