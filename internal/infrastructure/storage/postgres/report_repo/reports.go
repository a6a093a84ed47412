// Package report_repo provides PostgreSQL-backed report queries.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"granel/internal/domain/quotes"
	"granel/internal/domain/reports"
	"granel/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository with aggregate SQL. Reports
// read through the current querier, so they see uncommitted rows when
// called inside a transaction.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ reports.Repository = (*ReportRepo)(nil)

// GetSalesSummary aggregates sales per branch over a period.
func (r *ReportRepo) GetSalesSummary(ctx context.Context, filter reports.SalesSummaryFilter) (*reports.SalesSummary, error) {
	q := r.builder.Select(
		"s.branch_id AS branch_id",
		"b.name AS branch_name",
		"COUNT(*) AS sale_count",
		"COALESCE(SUM(s.total), 0) AS total",
		"COALESCE(SUM(CASE WHEN s.sale_type = 'cash' THEN s.total ELSE 0 END), 0) AS cash_total",
		"COALESCE(SUM(CASE WHEN s.sale_type = 'credit' THEN s.total ELSE 0 END), 0) AS credit_total",
		"COALESCE(SUM(s.paid), 0) AS collected",
	).
		From("doc_sales s").
		Join("cat_branches b ON b.id = s.branch_id").
		Where(squirrel.GtOrEq{"s.created_at": filter.FromDate}).
		Where(squirrel.LtOrEq{"s.created_at": filter.ToDate}).
		GroupBy("s.branch_id", "b.name").
		OrderBy("b.name")

	if len(filter.BranchIDs) > 0 {
		q = q.Where(squirrel.Eq{"s.branch_id": filter.BranchIDs})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build summary query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	summary := &reports.SalesSummary{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	if err := pgxscan.Select(ctx, querier, &summary.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}

	for _, row := range summary.Rows {
		summary.TotalSales += row.SaleCount
		summary.GrandTotal = summary.GrandTotal.Add(row.Total)
		summary.TotalOwed = summary.TotalOwed.Add(row.Total.Sub(row.Collected))
	}

	if filter.GroupByDay {
		daily, err := r.getDailySales(ctx, filter)
		if err != nil {
			return nil, err
		}
		summary.Daily = daily
	}

	return summary, nil
}

func (r *ReportRepo) getDailySales(ctx context.Context, filter reports.SalesSummaryFilter) ([]reports.DailySalesRow, error) {
	q := r.builder.Select(
		"date_trunc('day', s.created_at) AS date",
		"COUNT(*) AS sale_count",
		"COALESCE(SUM(s.total), 0) AS total",
	).
		From("doc_sales s").
		Where(squirrel.GtOrEq{"s.created_at": filter.FromDate}).
		Where(squirrel.LtOrEq{"s.created_at": filter.ToDate}).
		GroupBy("1").
		OrderBy("1")

	if len(filter.BranchIDs) > 0 {
		q = q.Where(squirrel.Eq{"s.branch_id": filter.BranchIDs})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build daily query: %w", err)
	}

	var rows []reports.DailySalesRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}

	return rows, nil
}

// GetTopProducts lists best-selling products by quantity sold.
// Quick items carry no product reference and group by name alone.
func (r *ReportRepo) GetTopProducts(ctx context.Context, filter reports.DashboardFilter) ([]reports.TopProductRow, error) {
	q := r.builder.Select(
		"l.product_id AS product_id",
		"l.product_name AS product_name",
		"SUM(l.quantity)::BIGINT AS quantity_sold",
		"COALESCE(SUM(l.subtotal), 0) AS revenue",
	).
		From("doc_sale_lines l").
		Join("doc_sales s ON s.id = l.sale_id").
		GroupBy("l.product_id", "l.product_name").
		OrderBy("quantity_sold DESC").
		Limit(uint64(filter.TopLimit))

	if filter.BranchID != nil {
		q = q.Where(squirrel.Eq{"s.branch_id": *filter.BranchID})
	}
	if !filter.FromDate.IsZero() {
		q = q.Where(squirrel.GtOrEq{"s.created_at": filter.FromDate})
	}
	if !filter.ToDate.IsZero() {
		q = q.Where(squirrel.LtOrEq{"s.created_at": filter.ToDate})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top products query: %w", err)
	}

	var rows []reports.TopProductRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	return rows, nil
}

// GetPendingQuotes counts and totals quotes awaiting conversion.
func (r *ReportRepo) GetPendingQuotes(ctx context.Context, filter reports.DashboardFilter) (*reports.PendingQuotesSummary, error) {
	q := r.builder.Select(
		"COUNT(*)",
		"COALESCE(SUM(total), 0)",
	).
		From("doc_quotes").
		Where(squirrel.Eq{"status": quotes.StatusPending})

	if filter.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *filter.BranchID})
	}
	if !filter.FromDate.IsZero() {
		q = q.Where(squirrel.GtOrEq{"created_at": filter.FromDate})
	}
	if !filter.ToDate.IsZero() {
		q = q.Where(squirrel.LtOrEq{"created_at": filter.ToDate})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending quotes query: %w", err)
	}

	summary := &reports.PendingQuotesSummary{}
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&summary.Count, &summary.Total); err != nil {
		return nil, fmt.Errorf("pending quotes: %w", err)
	}

	return summary, nil
}

// GetDebtorsReport lists customers with outstanding debt, largest first.
func (r *ReportRepo) GetDebtorsReport(ctx context.Context, filter reports.DebtorsFilter) (*reports.DebtorsReport, error) {
	base := r.builder.Select().
		From("cat_customers c").
		Where(squirrel.Gt{"c.debt_balance": 0})

	if filter.BranchID != nil {
		base = base.Where(squirrel.Eq{"c.branch_id": *filter.BranchID})
	}
	if filter.MinBalance != nil {
		base = base.Where(squirrel.GtOrEq{"c.debt_balance": *filter.MinBalance})
	}

	querier := r.txManager.GetQuerier(ctx)
	report := &reports.DebtorsReport{}

	countQ := base.Columns("COUNT(*)", "COALESCE(SUM(c.debt_balance), 0)")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&report.TotalCount, &report.TotalDebt); err != nil {
		return nil, fmt.Errorf("debtor totals: %w", err)
	}

	q := base.Columns(
		"c.id AS customer_id",
		"c.name AS customer_name",
		"c.phone AS phone",
		"c.branch_id AS branch_id",
		"c.debt_balance AS balance",
		"(SELECT MAX(p.created_at) FROM reg_payments p WHERE p.customer_id = c.id) AS last_payment_at",
	).
		OrderBy("c.debt_balance DESC", "c.name")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build debtors query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &report.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("debtors report: %w", err)
	}

	return report, nil
}

// GetStockBalanceReport lists (product, branch) balances with names.
func (r *ReportRepo) GetStockBalanceReport(ctx context.Context, filter reports.StockBalanceFilter) (*reports.StockBalanceReport, error) {
	base := r.builder.Select().
		From("reg_inventory i").
		Join("cat_branches b ON b.id = i.branch_id").
		Join("cat_products p ON p.id = i.product_id")

	if len(filter.BranchIDs) > 0 {
		base = base.Where(squirrel.Eq{"i.branch_id": filter.BranchIDs})
	}
	if len(filter.ProductIDs) > 0 {
		base = base.Where(squirrel.Eq{"i.product_id": filter.ProductIDs})
	}
	if filter.ExcludeZero {
		base = base.Where(squirrel.NotEq{"i.quantity": 0})
	}
	if filter.BelowQty != nil {
		base = base.Where(squirrel.LtOrEq{"i.quantity": filter.BelowQty.Int64Scaled()})
	}

	querier := r.txManager.GetQuerier(ctx)
	report := &reports.StockBalanceReport{}

	countQ := base.Columns("COUNT(*)")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&report.TotalCount); err != nil {
		return nil, fmt.Errorf("stock count: %w", err)
	}

	q := base.Columns(
		"i.branch_id AS branch_id",
		"b.name AS branch_name",
		"i.product_id AS product_id",
		"p.name AS product_name",
		"p.unit AS unit",
		"i.quantity AS quantity",
	).
		OrderBy("b.name", "p.name")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stock query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &report.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("stock balance: %w", err)
	}

	return report, nil
}
