// Package report_repo provides PostgreSQL read models for reporting.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kardex/internal/domain/reports"
	"kardex/internal/infrastructure/storage/postgres"
)

// ValuationRepo reads valuation inputs: engine-owned costs joined with the
// external stock quantity view.
type ValuationRepo struct {
	txManager *postgres.TxManager
}

// Compile-time check against the domain contract.
var _ reports.Repository = (*ValuationRepo)(nil)

// NewValuationRepo creates a valuation read repository.
func NewValuationRepo(txManager *postgres.TxManager) *ValuationRepo {
	return &ValuationRepo{txManager: txManager}
}

func (r *ValuationRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// FetchValuationRows implements reports.Repository. The result is always the
// whole costed catalog: classification happens in the domain layer before
// any filter, so no filter may leak into this query.
func (r *ValuationRepo) FetchValuationRows(ctx context.Context) ([]reports.Row, error) {
	sql, args, err := r.builder().
		Select(
			"a.article_ref",
			"a.subcategory_id",
			"COALESCE(s.quantity, 0) AS quantity",
			"a.cost",
			"a.last_purchase_at",
		).
		From("cat_articles a").
		LeftJoin("v_stock_quantity s ON s.article_ref = a.article_ref").
		Where("a.cost IS NOT NULL").
		Where(squirrel.Gt{"a.cost": 0}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.Row
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("fetch valuation rows: %w", err)
	}
	return rows, nil
}

// FetchUncosted implements reports.Repository. Cost IS NULL means "never
// established"; a zero cost is an established value and stays out of here.
func (r *ValuationRepo) FetchUncosted(ctx context.Context, filter reports.UncostedFilter, page reports.Page) ([]reports.UncostedArticle, int64, error) {
	q := r.builder().
		Select(
			"a.article_ref",
			"a.subcategory_id",
			"COALESCE(s.quantity, 0) AS quantity",
		).
		From("cat_articles a").
		LeftJoin("v_stock_quantity s ON s.article_ref = a.article_ref").
		Where("a.cost IS NULL")

	if filter.SubcategoryID != nil {
		q = q.Where(squirrel.Eq{"a.subcategory_id": *filter.SubcategoryID})
	}
	if filter.StockOnly {
		q = q.Where(squirrel.Gt{"s.quantity": 0})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count uncosted: %w", err)
	}

	q = q.OrderBy("a.article_ref")
	if page.Limit > 0 {
		q = q.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		q = q.Offset(uint64(page.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var items []reports.UncostedArticle
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("fetch uncosted: %w", err)
	}
	return items, total, nil
}
