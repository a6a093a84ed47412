package branch

import (
	"context"

	"granel/internal/core/id"
	"granel/internal/domain"
)

// Repository defines the interface for Branch persistence.
type Repository interface {
	domain.CatalogRepository[*Branch]

	// ActiveIDs returns ids of all active branches.
	ActiveIDs(ctx context.Context) ([]id.ID, error)
}
