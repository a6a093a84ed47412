package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"granel/internal/core/apperror"
	"granel/internal/core/id"
	"granel/internal/domain"
	"granel/internal/domain/quotes"
	"granel/internal/infrastructure/storage/postgres"
)

const (
	quotesTable     = "doc_quotes"
	quoteLinesTable = "doc_quote_lines"
)

var quoteCols = []string{
	"id", "number", "branch_id", "customer_name",
	"status", "total", "sale_id", "created_at",
}

var quoteLineCols = []string{
	"id", "quote_id", "product_id", "product_name",
	"quantity", "unit_price", "price_tier", "subtotal",
}

// QuoteRepo implements quotes.Repository.
type QuoteRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewQuoteRepo creates a new quote repository.
func NewQuoteRepo(txManager *postgres.TxManager) *QuoteRepo {
	return &QuoteRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ quotes.Repository = (*QuoteRepo)(nil)

// Create inserts the quote header.
func (r *QuoteRepo) Create(ctx context.Context, quote *quotes.Quote) error {
	q := r.builder.Insert(quotesTable).
		Columns(quoteCols...).
		Values(
			quote.ID, quote.Number, quote.BranchID, quote.CustomerName,
			quote.Status, quote.Total, quote.SaleID, quote.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}

	return nil
}

// SaveLines bulk inserts quote lines via COPY.
func (r *QuoteRepo) SaveLines(ctx context.Context, quoteID id.ID, lines []quotes.QuoteLine) error {
	if len(lines) == 0 {
		return nil
	}

	inserter := postgres.NewBatchInserter(r.txManager)
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{
			l.LineID, quoteID, l.ProductID, l.ProductName,
			l.Quantity, l.UnitPrice, l.Tier, l.Subtotal,
		})
	}

	if _, err := inserter.CopyFromSlice(ctx, quoteLinesTable, quoteLineCols, rows); err != nil {
		return fmt.Errorf("copy quote lines: %w", err)
	}

	return nil
}

// GetByID retrieves the quote header.
func (r *QuoteRepo) GetByID(ctx context.Context, quoteID id.ID) (*quotes.Quote, error) {
	q := r.builder.Select(quoteCols...).
		From(quotesTable).
		Where(squirrel.Eq{"id": quoteID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var quote quotes.Quote
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &quote, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("quote", quoteID.String())
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}

	return &quote, nil
}

// GetByIDForUpdate retrieves the header with a row lock. Two concurrent
// conversions of the same quote serialize on this lock.
func (r *QuoteRepo) GetByIDForUpdate(ctx context.Context, quoteID id.ID) (*quotes.Quote, error) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = $1 FOR UPDATE",
		strings.Join(quoteCols, ", "), quotesTable,
	)

	var quote quotes.Quote
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &quote, sql, quoteID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("quote", quoteID.String())
		}
		return nil, fmt.Errorf("lock quote: %w", err)
	}

	return &quote, nil
}

// GetLines retrieves lines for a quote.
func (r *QuoteRepo) GetLines(ctx context.Context, quoteID id.ID) ([]quotes.QuoteLine, error) {
	q := r.builder.Select(quoteLineCols...).
		From(quoteLinesTable).
		Where(squirrel.Eq{"quote_id": quoteID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []quotes.QuoteLine
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select lines: %w", err)
	}

	return lines, nil
}

// MarkConverted sets status=converted and links the sale. The status
// guard makes the transition one-way even without the row lock.
func (r *QuoteRepo) MarkConverted(ctx context.Context, quoteID, saleID id.ID) error {
	q := r.builder.Update(quotesTable).
		Set("status", quotes.StatusConverted).
		Set("sale_id", saleID).
		Where(squirrel.Eq{"id": quoteID, "status": quotes.StatusPending})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark converted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewQuoteConverted(quoteID.String())
	}

	return nil
}

// DeleteWithLines removes the quote header and its lines.
func (r *QuoteRepo) DeleteWithLines(ctx context.Context, quoteID id.ID) error {
	for _, del := range []squirrel.DeleteBuilder{
		r.builder.Delete(quoteLinesTable).Where(squirrel.Eq{"quote_id": quoteID}),
		r.builder.Delete(quotesTable).Where(squirrel.Eq{"id": quoteID}),
	} {
		sql, args, err := del.ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete quote: %w", err)
		}
	}

	return nil
}

// List retrieves quotes with filtering.
func (r *QuoteRepo) List(ctx context.Context, filter quotes.ListFilter) (domain.ListResult[*quotes.Quote], error) {
	result := domain.ListResult[*quotes.Quote]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder.Select(quoteCols...).
		From(quotesTable)

	if filter.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *filter.BranchID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
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
		return result, fmt.Errorf("list quotes: %w", err)
	}

	return result, nil
}
