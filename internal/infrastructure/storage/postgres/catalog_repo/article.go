// Package catalog_repo provides PostgreSQL implementations for catalog
// lookups and article cost state.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"kardex/internal/core/apperror"
	"kardex/internal/core/types"
	"kardex/internal/domain/articles"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	articlesTable = "cat_articles"

	// stockView is maintained by the external movement ledger. The costing
	// engine reads quantities from it and never writes to it.
	stockView = "v_stock_quantity"
)

var articleCols = postgres.ExtractDBColumns[articles.Article]()

// ArticleRepo reads and writes article cost state, and serves catalog
// lookups plus the external stock quantity view.
type ArticleRepo struct {
	txManager *postgres.TxManager
}

// Compile-time checks against the domain contracts.
var (
	_ articles.Repository  = (*ArticleRepo)(nil)
	_ articles.StockLedger = (*ArticleRepo)(nil)
	_ articles.Catalog     = (*ArticleRepo)(nil)
)

// NewArticleRepo creates an article repository.
func NewArticleRepo(txManager *postgres.TxManager) *ArticleRepo {
	return &ArticleRepo{txManager: txManager}
}

func (r *ArticleRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetForUpdate implements articles.Repository. The row lock serializes
// concurrent cost writers for the same article until the caller commits.
func (r *ArticleRepo) GetForUpdate(ctx context.Context, ref string) (*articles.Article, error) {
	sql, args, err := r.builder().
		Select(articleCols...).
		From(articlesTable).
		Where(squirrel.Eq{"article_ref": ref}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	article := &articles.Article{}
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, article, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("article", ref)
		}
		return nil, fmt.Errorf("get article for update: %w", err)
	}
	return article, nil
}

// UpdateCost implements articles.Repository.
func (r *ArticleRepo) UpdateCost(ctx context.Context, ref string, cost types.Money, actingUser string) error {
	sql, args, err := r.builder().
		Update(articlesTable).
		Set("cost", cost).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("updated_by", actingUser).
		Where(squirrel.Eq{"article_ref": ref}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update article cost: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("article", ref)
	}
	return nil
}

// TouchLastPurchase implements articles.Repository.
func (r *ArticleRepo) TouchLastPurchase(ctx context.Context, ref string) error {
	sql, args, err := r.builder().
		Update(articlesTable).
		Set("last_purchase_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"article_ref": ref}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("touch last purchase: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("article", ref)
	}
	return nil
}

// GetQuantity implements articles.StockLedger. Articles absent from the
// view have zero on hand.
func (r *ArticleRepo) GetQuantity(ctx context.Context, ref string) (types.Money, error) {
	sql, args, err := r.builder().
		Select("COALESCE(SUM(quantity), 0)").
		From(stockView).
		Where(squirrel.Eq{"article_ref": ref}).
		ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var quantity types.Money
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&quantity); err != nil {
		return types.Zero(), fmt.Errorf("get stock quantity: %w", err)
	}
	return quantity, nil
}

// ArticleExists implements articles.Catalog.
func (r *ArticleRepo) ArticleExists(ctx context.Context, ref string) (bool, error) {
	sql, args, err := r.builder().
		Select("1").
		From(articlesTable).
		Where(squirrel.Eq{"article_ref": ref}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	querier := r.txManager.GetQuerier(ctx)
	err = querier.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check article: %w", err)
	}
	return true, nil
}

// GetSubcategory implements articles.Catalog.
func (r *ArticleRepo) GetSubcategory(ctx context.Context, ref string) (int64, error) {
	sql, args, err := r.builder().
		Select("subcategory_id").
		From(articlesTable).
		Where(squirrel.Eq{"article_ref": ref}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var subcategory *int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&subcategory); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNotFound("article", ref)
		}
		return 0, fmt.Errorf("get subcategory: %w", err)
	}
	if subcategory == nil {
		return 0, apperror.NewNotFound("article subcategory", ref)
	}
	return *subcategory, nil
}
