// Package document_repo provides PostgreSQL implementations for document
// repositories.
package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kardex/internal/core/apperror"
	"kardex/internal/core/types"
	"kardex/internal/domain/documents/purchase"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	purchaseTable = "doc_purchase"
	linesTable    = "doc_purchase_lines"
)

var (
	purchaseCols = postgres.ExtractDBColumns[purchase.Document]()
	lineCols     = postgres.ExtractDBColumns[purchase.Line]()
)

// PurchaseRepo persists purchase documents and their lines.
type PurchaseRepo struct {
	txManager *postgres.TxManager
}

// Compile-time check against the domain contract.
var _ purchase.Repository = (*PurchaseRepo)(nil)

// NewPurchaseRepo creates a purchase document repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{txManager: txManager}
}

func (r *PurchaseRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create implements purchase.Repository.
func (r *PurchaseRepo) Create(ctx context.Context, doc *purchase.Document) error {
	data := postgres.StructToMap(doc)

	filtered := make(map[string]any, len(purchaseCols))
	for _, col := range purchaseCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().
		Insert(purchaseTable).
		SetMap(filtered).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", purchaseTable, err)
	}
	return nil
}

// GetByNumber implements purchase.Repository.
func (r *PurchaseRepo) GetByNumber(ctx context.Context, number string) (*purchase.Document, error) {
	return r.getOne(ctx, squirrel.Eq{"number": number}, number)
}

// GetByID implements purchase.Repository.
func (r *PurchaseRepo) GetByID(ctx context.Context, id int64) (*purchase.Document, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, id)
}

func (r *PurchaseRepo) getOne(ctx context.Context, where squirrel.Eq, ref any) (*purchase.Document, error) {
	sql, args, err := r.builder().
		Select(purchaseCols...).
		From(purchaseTable).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	doc := &purchase.Document{}
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("document", ref)
		}
		return nil, fmt.Errorf("get %s: %w", purchaseTable, err)
	}
	return doc, nil
}

// UpdateHeader implements purchase.Repository. Identity columns stay put.
func (r *PurchaseRepo) UpdateHeader(ctx context.Context, doc *purchase.Document) error {
	sql, args, err := r.builder().
		Update(purchaseTable).
		Set("supplier_ref", doc.SupplierRef).
		Set("date", doc.Date).
		Set("note", doc.Note).
		Set("status", doc.Status).
		Set("updated_at", doc.UpdatedAt).
		Set("updated_by", doc.UpdatedBy).
		Where(squirrel.Eq{"id": doc.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", purchaseTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("document", doc.ID)
	}
	return nil
}

// GetLines implements purchase.Repository.
func (r *PurchaseRepo) GetLines(ctx context.Context, documentID int64) ([]purchase.Line, error) {
	sql, args, err := r.builder().
		Select(lineCols...).
		From(linesTable).
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase.Line
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}

// GetLine implements purchase.Repository.
func (r *PurchaseRepo) GetLine(ctx context.Context, documentID int64, lineNo int) (*purchase.Line, error) {
	sql, args, err := r.builder().
		Select(lineCols...).
		From(linesTable).
		Where(squirrel.Eq{"document_id": documentID, "line_no": lineNo}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	line := &purchase.Line{}
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, line, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("document line", lineNo)
		}
		return nil, fmt.Errorf("get line: %w", err)
	}
	return line, nil
}

// InsertLine implements purchase.Repository.
func (r *PurchaseRepo) InsertLine(ctx context.Context, line *purchase.Line) error {
	data := postgres.StructToMap(line)

	filtered := make(map[string]any, len(lineCols))
	for _, col := range lineCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().
		Insert(linesTable).
		SetMap(filtered).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert line: %w", err)
	}
	return nil
}

// UpdateLine implements purchase.Repository.
func (r *PurchaseRepo) UpdateLine(ctx context.Context, line *purchase.Line) error {
	sql, args, err := r.builder().
		Update(linesTable).
		Set("quantity", line.Quantity).
		Set("unit_cost", line.UnitCost).
		Set("value", line.Value).
		Where(squirrel.Eq{"document_id": line.DocumentID, "line_no": line.LineNo}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update line: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("document line", line.LineNo)
	}
	return nil
}

// UpdateTotal implements purchase.Repository.
func (r *PurchaseRepo) UpdateTotal(ctx context.Context, documentID int64, total types.Money) error {
	sql, args, err := r.builder().
		Update(purchaseTable).
		Set("total_value", total).
		Where(squirrel.Eq{"id": documentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update total: %w", err)
	}
	return nil
}

// List implements purchase.Repository.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) (purchase.ListResult, error) {
	result := purchase.ListResult{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().
		Select(purchaseCols...).
		From(purchaseTable).
		Where(squirrel.Eq{"doc_type": purchase.DocTypePurchase})

	if filter.SupplierRef != nil {
		q = q.Where(squirrel.Eq{"supplier_ref": *filter.SupplierRef})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}
	return result, nil
}

// parseOrderBy validates the sort field against the known column whitelist.
// User-provided field names never reach the SQL text unchecked.
func parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(purchaseCols))
	for _, col := range purchaseCols {
		allowed[col] = struct{}{}
	}

	if strings.TrimSpace(orderBy) == "" {
		return "date DESC, id DESC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}
	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy).WithDetail("field", field)
	}

	return field + " " + direction, nil
}
