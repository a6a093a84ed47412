package reports

import (
	"context"
	"fmt"
)

// Service provides report generation operations.
// Reports are plain queries; rendering (PDF, CSV) belongs to callers.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetSalesSummary aggregates sales per branch for a period.
func (s *Service) GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	report, err := s.repo.GetSalesSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get sales summary: %w", err)
	}

	return report, nil
}

// GetDashboard builds the statistics panel: best-selling products by
// quantity and the pending quote backlog.
func (s *Service) GetDashboard(ctx context.Context, filter DashboardFilter) (*Dashboard, error) {
	if filter.TopLimit <= 0 {
		filter.TopLimit = 5
	}
	if filter.TopLimit > 50 {
		filter.TopLimit = 50
	}
	if !filter.FromDate.IsZero() && !filter.ToDate.IsZero() && filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	top, err := s.repo.GetTopProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get top products: %w", err)
	}

	pending, err := s.repo.GetPendingQuotes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get pending quotes: %w", err)
	}

	return &Dashboard{TopProducts: top, PendingQuotes: *pending}, nil
}

// GetDebtors lists customers with outstanding debt, largest first.
func (s *Service) GetDebtors(ctx context.Context, filter DebtorsFilter) (*DebtorsReport, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetDebtorsReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get debtors report: %w", err)
	}

	return report, nil
}

// GetStockBalance lists current on-hand per (product, branch).
func (s *Service) GetStockBalance(ctx context.Context, filter StockBalanceFilter) (*StockBalanceReport, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetStockBalanceReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock balance report: %w", err)
	}

	return report, nil
}
