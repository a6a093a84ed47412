package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error)
	GetTopProducts(ctx context.Context, filter DashboardFilter) ([]TopProductRow, error)
	GetPendingQuotes(ctx context.Context, filter DashboardFilter) (*PendingQuotesSummary, error)
	GetDebtorsReport(ctx context.Context, filter DebtorsFilter) (*DebtorsReport, error)
	GetStockBalanceReport(ctx context.Context, filter StockBalanceFilter) (*StockBalanceReport, error)
}
