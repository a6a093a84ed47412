// Package branch provides the Branch catalog (store locations).
package branch

import (
	"context"

	"granel/internal/core/entity"
)

// Branch represents a store location with its own inventory.
type Branch struct {
	entity.Catalog

	Address string `db:"address" json:"address,omitempty"`
	Phone   string `db:"phone" json:"phone,omitempty"`
}

// New creates a new Branch.
func New(name string) *Branch {
	return &Branch{
		Catalog: entity.NewCatalog(name),
	}
}

// Validate implements entity.Validatable.
func (b *Branch) Validate(ctx context.Context) error {
	return b.Catalog.Validate(ctx)
}
