package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"granel/internal/core/id"
	"granel/internal/core/types"
)

type fakeReportRepo struct {
	topProducts   []TopProductRow
	pendingQuotes PendingQuotesSummary

	lastDashboardFilter DashboardFilter
}

func (f *fakeReportRepo) GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error) {
	return &SalesSummary{FromDate: filter.FromDate, ToDate: filter.ToDate}, nil
}

func (f *fakeReportRepo) GetTopProducts(ctx context.Context, filter DashboardFilter) ([]TopProductRow, error) {
	f.lastDashboardFilter = filter
	if filter.TopLimit < len(f.topProducts) {
		return f.topProducts[:filter.TopLimit], nil
	}
	return f.topProducts, nil
}

func (f *fakeReportRepo) GetPendingQuotes(ctx context.Context, filter DashboardFilter) (*PendingQuotesSummary, error) {
	summary := f.pendingQuotes
	return &summary, nil
}

func (f *fakeReportRepo) GetDebtorsReport(ctx context.Context, filter DebtorsFilter) (*DebtorsReport, error) {
	return &DebtorsReport{}, nil
}

func (f *fakeReportRepo) GetStockBalanceReport(ctx context.Context, filter StockBalanceFilter) (*StockBalanceReport, error) {
	return &StockBalanceReport{}, nil
}

func topRow(name string, qty float64, revenue float64) TopProductRow {
	productID := id.New()
	return TopProductRow{
		ProductID:    &productID,
		ProductName:  name,
		QuantitySold: types.NewQuantityFromFloat64(qty),
		Revenue:      types.NewMoney(revenue),
	}
}

func TestGetDashboard(t *testing.T) {
	repo := &fakeReportRepo{
		topProducts: []TopProductRow{
			topRow("Detergente concentrado", 420, 110000),
			topRow("Lavandina", 310, 55800),
			topRow("Suavizante", 120, 26400),
		},
		pendingQuotes: PendingQuotesSummary{Count: 4, Total: types.NewMoney(18250)},
	}
	svc := NewService(repo)

	dash, err := svc.GetDashboard(context.Background(), DashboardFilter{})
	require.NoError(t, err)

	require.Len(t, dash.TopProducts, 3)
	assert.Equal(t, "Detergente concentrado", dash.TopProducts[0].ProductName)
	assert.Equal(t, int64(4), dash.PendingQuotes.Count)
	assert.True(t, dash.PendingQuotes.Total.Equal(types.NewMoney(18250)))

	assert.Equal(t, 5, repo.lastDashboardFilter.TopLimit, "limit defaults to 5")
}

func TestGetDashboard_ClampsTopLimit(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewService(repo)

	_, err := svc.GetDashboard(context.Background(), DashboardFilter{TopLimit: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastDashboardFilter.TopLimit)
}

func TestGetDashboard_InvalidPeriod(t *testing.T) {
	svc := NewService(&fakeReportRepo{})

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -7)
	_, err := svc.GetDashboard(context.Background(), DashboardFilter{FromDate: from, ToDate: to})
	require.Error(t, err)
}

func TestGetSalesSummary_RequiresPeriod(t *testing.T) {
	svc := NewService(&fakeReportRepo{})

	_, err := svc.GetSalesSummary(context.Background(), SalesSummaryFilter{})
	require.Error(t, err)
}
