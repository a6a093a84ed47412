package product

import (
	"context"

	"granel/internal/core/id"
	"granel/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindByCategory retrieves products of a category.
	FindByCategory(ctx context.Context, category string, filter domain.ListFilter) (domain.ListResult[*Product], error)

	// HasSaleHistory reports whether any sale line references the product.
	HasSaleHistory(ctx context.Context, productID id.ID) (bool, error)

	// HardDelete physically removes a product. Only valid when it has no
	// sale history; callers must check first.
	HardDelete(ctx context.Context, productID id.ID) error
}
