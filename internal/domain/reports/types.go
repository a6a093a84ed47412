// Package reports provides read-only query services over sales,
// inventory, and customer debt.
package reports

import (
	"time"

	"granel/internal/core/id"
	"granel/internal/core/types"
)

// --- Sales Summary ---

// SalesSummaryFilter defines filter for the sales summary report.
type SalesSummaryFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time

	// Filters
	BranchIDs []id.ID

	// GroupByDay adds a per-day breakdown
	GroupByDay bool
}

// SalesSummaryRow is one aggregated row (per branch).
type SalesSummaryRow struct {
	BranchID    id.ID       `json:"branchId"`
	BranchName  string      `json:"branchName"`
	SaleCount   int64       `json:"saleCount"`
	Total       types.Money `json:"total"`
	CashTotal   types.Money `json:"cashTotal"`
	CreditTotal types.Money `json:"creditTotal"`
	// Collected is money actually received (paid amounts)
	Collected types.Money `json:"collected"`
}

// DailySalesRow is one per-day breakdown row.
type DailySalesRow struct {
	Date      time.Time   `json:"date"`
	SaleCount int64       `json:"saleCount"`
	Total     types.Money `json:"total"`
}

// SalesSummary is the full report.
type SalesSummary struct {
	FromDate time.Time         `json:"fromDate"`
	ToDate   time.Time         `json:"toDate"`
	Rows     []SalesSummaryRow `json:"rows"`
	Daily    []DailySalesRow   `json:"daily,omitempty"`

	// Grand totals
	TotalSales int64       `json:"totalSales"`
	GrandTotal types.Money `json:"grandTotal"`
	TotalOwed  types.Money `json:"totalOwed"`
}

// --- Dashboard ---

// DashboardFilter defines filter for the dashboard statistics.
// Zero dates mean all-time.
type DashboardFilter struct {
	BranchID *id.ID
	FromDate time.Time
	ToDate   time.Time
	// TopLimit caps the best-seller list; defaults to 5
	TopLimit int
}

// TopProductRow is one best-selling product by quantity sold.
type TopProductRow struct {
	ProductID    *id.ID         `json:"productId,omitempty"`
	ProductName  string         `json:"productName"`
	QuantitySold types.Quantity `json:"quantitySold"`
	Revenue      types.Money    `json:"revenue"`
}

// PendingQuotesSummary aggregates quotes still awaiting conversion.
type PendingQuotesSummary struct {
	Count int64       `json:"count"`
	Total types.Money `json:"total"`
}

// Dashboard is the at-a-glance statistics panel.
type Dashboard struct {
	TopProducts   []TopProductRow      `json:"topProducts"`
	PendingQuotes PendingQuotesSummary `json:"pendingQuotes"`
}

// --- Debtors ---

// DebtorsFilter defines filter for the debtors report.
type DebtorsFilter struct {
	BranchID   *id.ID
	MinBalance *types.Money
	Limit      int
	Offset     int
}

// DebtorRow is one customer with outstanding debt.
type DebtorRow struct {
	CustomerID   id.ID       `json:"customerId"`
	CustomerName string      `json:"customerName"`
	Phone        string      `json:"phone,omitempty"`
	BranchID     *id.ID      `json:"branchId,omitempty"`
	Balance      types.Money `json:"balance"`
	// LastPaymentAt is nil when the customer never paid anything
	LastPaymentAt *time.Time `json:"lastPaymentAt,omitempty"`
}

// DebtorsReport is the full report, largest balance first.
type DebtorsReport struct {
	Rows       []DebtorRow `json:"rows"`
	TotalCount int64       `json:"totalCount"`
	TotalDebt  types.Money `json:"totalDebt"`
}

// --- Stock Balance ---

// StockBalanceFilter defines filter for the stock balance report.
type StockBalanceFilter struct {
	BranchIDs   []id.ID
	ProductIDs  []id.ID
	ExcludeZero bool
	// BelowQty keeps only rows at or under the given low-stock quantity
	BelowQty *types.Quantity
	Limit    int
	Offset   int
}

// StockBalanceRow is one (product, branch) balance.
type StockBalanceRow struct {
	BranchID    id.ID          `json:"branchId"`
	BranchName  string         `json:"branchName"`
	ProductID   id.ID          `json:"productId"`
	ProductName string         `json:"productName"`
	Unit        string         `json:"unit"`
	Quantity    types.Quantity `json:"quantity"`
}

// StockBalanceReport is the full report.
type StockBalanceReport struct {
	Rows       []StockBalanceRow `json:"rows"`
	TotalCount int64             `json:"totalCount"`
}
