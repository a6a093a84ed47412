package customer

import (
	"context"

	"granel/internal/core/id"
	"granel/internal/domain"
)

// Repository defines the interface for Customer persistence.
// Balance mutations are owned by the credit register, not this repository;
// Update deliberately excludes the debt_balance column.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// FindByBranch retrieves customers affiliated with a branch.
	FindByBranch(ctx context.Context, branchID id.ID, filter domain.ListFilter) (domain.ListResult[*Customer], error)

	// FindDebtors retrieves customers with a positive balance, largest first.
	FindDebtors(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error)
}
