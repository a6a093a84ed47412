// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"granel/internal/core/apperror"
	"granel/internal/core/id"
	"granel/internal/domain"
	"granel/internal/domain/sales"
	"granel/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_sales"
	saleLinesTable = "doc_sale_lines"
)

var saleCols = []string{
	"id", "number", "branch_id", "customer_id", "operator_id",
	"sale_type", "total", "paid", "created_at",
}

var saleLineCols = []string{
	"id", "sale_id", "product_id", "product_name",
	"quantity", "unit_price", "price_tier", "subtotal",
}

// SaleRepo implements sales.Repository.
type SaleRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ sales.Repository = (*SaleRepo)(nil)

// Create inserts the sale header.
func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	q := r.builder.Insert(salesTable).
		Columns(saleCols...).
		Values(
			sale.ID, sale.Number, sale.BranchID, sale.CustomerID, sale.OperatorID,
			sale.SaleType, sale.Total, sale.Paid, sale.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	return nil
}

// SaveLines bulk inserts sale lines via COPY.
func (r *SaleRepo) SaveLines(ctx context.Context, saleID id.ID, lines []sales.SaleLine) error {
	if len(lines) == 0 {
		return nil
	}

	inserter := postgres.NewBatchInserter(r.txManager)
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{
			l.LineID, saleID, l.ProductID, l.ProductName,
			l.Quantity, l.UnitPrice, l.Tier, l.Subtotal,
		})
	}

	if _, err := inserter.CopyFromSlice(ctx, saleLinesTable, saleLineCols, rows); err != nil {
		return fmt.Errorf("copy sale lines: %w", err)
	}

	return nil
}

// GetByID retrieves the sale header.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	q := r.builder.Select(saleCols...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sale sales.Sale
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &sale, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	return &sale, nil
}

// GetLines retrieves lines for a sale.
func (r *SaleRepo) GetLines(ctx context.Context, saleID id.ID) ([]sales.SaleLine, error) {
	q := r.builder.Select(saleLineCols...).
		From(saleLinesTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sales.SaleLine
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select lines: %w", err)
	}

	return lines, nil
}

// DeleteWithLines removes the sale header and its lines.
func (r *SaleRepo) DeleteWithLines(ctx context.Context, saleID id.ID) error {
	// Lines go first; ON DELETE CASCADE also covers them but an explicit
	// delete keeps the row counts observable.
	for _, del := range []squirrel.DeleteBuilder{
		r.builder.Delete(saleLinesTable).Where(squirrel.Eq{"sale_id": saleID}),
		r.builder.Delete(salesTable).Where(squirrel.Eq{"id": saleID}),
	} {
		sql, args, err := del.ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}
	}

	return nil
}

// List retrieves sales with filtering.
func (r *SaleRepo) List(ctx context.Context, filter sales.ListFilter) (domain.ListResult[*sales.Sale], error) {
	result := domain.ListResult[*sales.Sale]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder.Select(saleCols...).
		From(salesTable)

	if filter.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *filter.BranchID})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.SaleType != nil {
		q = q.Where(squirrel.Eq{"sale_type": *filter.SaleType})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("created_at DESC")
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
		return result, fmt.Errorf("list sales: %w", err)
	}

	return result, nil
}
