package quotes

import (
	"context"
	"time"

	"granel/internal/core/id"
	"granel/internal/domain"
)

// Repository defines the interface for Quote persistence.
type Repository interface {
	// Create inserts the quote header
	Create(ctx context.Context, quote *Quote) error

	// SaveLines bulk inserts quote lines
	SaveLines(ctx context.Context, quoteID id.ID, lines []QuoteLine) error

	// GetByID retrieves the quote header (without lines)
	GetByID(ctx context.Context, quoteID id.ID) (*Quote, error)

	// GetByIDForUpdate retrieves the header with a row lock so two
	// concurrent conversions serialize; must run inside a transaction
	GetByIDForUpdate(ctx context.Context, quoteID id.ID) (*Quote, error)

	// GetLines retrieves lines for a quote
	GetLines(ctx context.Context, quoteID id.ID) ([]QuoteLine, error)

	// MarkConverted sets status=converted and links the sale
	MarkConverted(ctx context.Context, quoteID, saleID id.ID) error

	// DeleteWithLines removes the quote header and its lines
	DeleteWithLines(ctx context.Context, quoteID id.ID) error

	// List retrieves quotes with filtering
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quote], error)
}

// ListFilter for quote queries.
type ListFilter struct {
	BranchID *id.ID
	Status   *Status
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
