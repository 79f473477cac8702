// Package register_repo provides PostgreSQL implementations for register
// repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kardex/internal/domain/registers/costhistory"
	"kardex/internal/infrastructure/storage/postgres"
)

const costHistoryTable = "reg_cost_history"

// entryCols excludes "id": storage assigns it.
var entryCols = func() []string {
	all := postgres.ExtractDBColumns[costhistory.Entry]()
	cols := make([]string, 0, len(all)-1)
	for _, c := range all {
		if c != "id" {
			cols = append(cols, c)
		}
	}
	return cols
}()

// CostHistoryRepo persists the append-only cost audit trail.
// The repository exposes no update or delete statements at all.
type CostHistoryRepo struct {
	txManager *postgres.TxManager
}

// Compile-time check against the domain contract.
var _ costhistory.Repository = (*CostHistoryRepo)(nil)

// NewCostHistoryRepo creates a cost history repository.
func NewCostHistoryRepo(txManager *postgres.TxManager) *CostHistoryRepo {
	return &CostHistoryRepo{txManager: txManager}
}

func (r *CostHistoryRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Append implements costhistory.Repository. Runs on the caller's querier, so
// inside the caller's transaction the entry commits or rolls back with the
// movement it mirrors.
func (r *CostHistoryRepo) Append(ctx context.Context, entry *costhistory.Entry) error {
	data := postgres.StructToMap(entry)

	filtered := make(map[string]any, len(entryCols))
	for _, col := range entryCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().
		Insert(costHistoryTable).
		SetMap(filtered).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&entry.ID); err != nil {
		return fmt.Errorf("append cost history: %w", err)
	}
	return nil
}

// ListByArticle implements costhistory.Repository.
func (r *CostHistoryRepo) ListByArticle(ctx context.Context, articleRef string, filter costhistory.ListFilter) ([]costhistory.Entry, error) {
	q := r.builder().
		Select(postgres.ExtractDBColumns[costhistory.Entry]()...).
		From(costHistoryTable).
		Where(squirrel.Eq{"article_ref": articleRef})

	if filter.DocumentID != nil {
		q = q.Where(squirrel.Eq{"document_id": *filter.DocumentID})
	}
	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	// Insertion order, not wall clock: corrections may carry out-of-order
	// timestamps and must still replay in the order they were appended.
	q = q.OrderBy("id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []costhistory.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list cost history: %w", err)
	}
	return entries, nil
}

// ListByDocument implements costhistory.Repository.
func (r *CostHistoryRepo) ListByDocument(ctx context.Context, documentID int64) ([]costhistory.Entry, error) {
	sql, args, err := r.builder().
		Select(postgres.ExtractDBColumns[costhistory.Entry]()...).
		From(costHistoryTable).
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []costhistory.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list cost history: %w", err)
	}
	return entries, nil
}
