package sales

import (
	"context"
	"time"

	"granel/internal/core/id"
	"granel/internal/domain"
)

// Repository defines the interface for Sale persistence.
type Repository interface {
	// Create inserts the sale header
	Create(ctx context.Context, sale *Sale) error

	// SaveLines bulk inserts sale lines
	SaveLines(ctx context.Context, saleID id.ID, lines []SaleLine) error

	// GetByID retrieves the sale header (without lines)
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// GetLines retrieves lines for a sale
	GetLines(ctx context.Context, saleID id.ID) ([]SaleLine, error)

	// DeleteWithLines removes the sale header and its lines
	DeleteWithLines(ctx context.Context, saleID id.ID) error

	// List retrieves sales with filtering
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error)
}

// ListFilter for sale queries.
type ListFilter struct {
	BranchID   *id.ID
	CustomerID *id.ID
	SaleType   *SaleType
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}
