// Package product provides the Product catalog.
// Products are bulk cleaning goods sold by volume, unit, or weight.
package product

import (
	"context"

	"granel/internal/core/apperror"
	"granel/internal/core/entity"
	"granel/internal/core/types"
	"granel/internal/domain/pricing"
)

// Product represents a catalog item with default prices.
// Branch-level price overrides live in the inventory register.
type Product struct {
	entity.Catalog

	// Category defines pricing behavior (liquid is tiered)
	Category pricing.Category `db:"category" json:"category"`

	// Unit is the sale unit label (L, kg, unit)
	Unit string `db:"unit" json:"unit"`

	// PriceRetail is the default retail price per unit
	PriceRetail types.Money `db:"price_retail" json:"priceRetail"`

	// PriceWholesale is the default wholesale price per unit
	PriceWholesale types.Money `db:"price_wholesale" json:"priceWholesale"`

	// WholesaleThreshold is the quantity at which wholesale pricing starts.
	// Zero disables tiering.
	WholesaleThreshold types.Quantity `db:"wholesale_threshold" json:"wholesaleThreshold"`

	// Description is an optional free-text note
	Description string `db:"description" json:"description,omitempty"`
}

// defaultLiquidThreshold applies when a tiered product is created
// without an explicit threshold.
var defaultLiquidThreshold = types.NewQuantityFromFloat64(5)

// New creates a product with category-dependent defaults.
// Non-tiered categories get wholesale price equal to retail and no threshold.
func New(name string, category pricing.Category, retail types.Money) *Product {
	p := &Product{
		Catalog:     entity.NewCatalog(name),
		Category:    category,
		Unit:        defaultUnit(category),
		PriceRetail: retail,
	}

	if category.Tiered() {
		p.WholesaleThreshold = defaultLiquidThreshold
	} else {
		p.PriceWholesale = retail
		p.WholesaleThreshold = 0
	}

	return p
}

func defaultUnit(category pricing.Category) string {
	switch category {
	case pricing.CategoryLiquid:
		return "L"
	case pricing.CategoryBulkFood:
		return "kg"
	default:
		return "unit"
	}
}

// ApplyCategoryDefaults normalizes fields after user edits:
// non-tiered products always sell at the retail price.
func (p *Product) ApplyCategoryDefaults() {
	if !p.Category.Tiered() {
		p.PriceWholesale = p.PriceRetail
		p.WholesaleThreshold = 0
	}
}

// DefaultPricing returns the product-level price set, before branch overrides.
func (p *Product) DefaultPricing() pricing.BranchPricing {
	return pricing.BranchPricing{
		Retail:    p.PriceRetail,
		Wholesale: p.PriceWholesale,
		Threshold: p.WholesaleThreshold,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !p.Category.IsValid() {
		return apperror.NewValidation("invalid product category").
			WithDetail("field", "category").
			WithDetail("value", string(p.Category))
	}

	if !p.PriceRetail.IsPositive() {
		return apperror.NewInvalidPrice("retail price must be positive").
			WithDetail("field", "priceRetail")
	}

	if p.Category.Tiered() {
		if !p.PriceWholesale.IsPositive() {
			return apperror.NewInvalidPrice("wholesale price must be positive").
				WithDetail("field", "priceWholesale")
		}
		if p.PriceWholesale.GreaterThan(p.PriceRetail) {
			return apperror.NewInvalidPrice("wholesale price cannot exceed retail price").
				WithDetail("field", "priceWholesale")
		}
		if p.WholesaleThreshold < 0 {
			return apperror.NewInvalidQuantity("wholesale threshold cannot be negative").
				WithDetail("field", "wholesaleThreshold")
		}
	}

	return nil
}
