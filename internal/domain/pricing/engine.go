// Package pricing computes cart line prices under tiered retail/wholesale rules.
package pricing

import (
	"github.com/shopspring/decimal"

	"granel/internal/core/apperror"
	"granel/internal/core/types"
)

// Category defines how a product is priced.
type Category string

const (
	// CategoryLiquid is priced per volume with a wholesale tier.
	CategoryLiquid Category = "liquid"
	// CategoryDryGoods is priced per unit, no tiering.
	CategoryDryGoods Category = "dry_goods"
	// CategoryBulkFood is priced per weight, no tiering.
	CategoryBulkFood Category = "bulk_food"
)

// IsValid reports whether the category is known.
func (c Category) IsValid() bool {
	switch c {
	case CategoryLiquid, CategoryDryGoods, CategoryBulkFood:
		return true
	}
	return false
}

// Tiered reports whether the category participates in wholesale tiering.
func (c Category) Tiered() bool {
	return c == CategoryLiquid
}

// Tier is the price bracket selected for a cart line.
type Tier string

const (
	TierRetail    Tier = "retail"
	TierWholesale Tier = "wholesale"
	// TierStandard is used for non-tiered categories.
	TierStandard Tier = "standard"
)

// BranchPricing is the effective price set for a product at a branch.
// Branch-level overrides are already resolved into these fields.
type BranchPricing struct {
	Retail    types.Money
	Wholesale types.Money
	Threshold types.Quantity
}

// Quote is the result of pricing a single cart line.
type Quote struct {
	Quantity  types.Quantity
	UnitPrice types.Money
	Tier      Tier
	Total     types.Money
	Savings   types.Money
}

// PriceByAmount computes quantity and tier for a cash amount.
// Quantity is first implied at the retail price; if the implied quantity
// reaches the wholesale threshold for a tiered category, quantity is
// recomputed at the wholesale price so the customer gets more product for
// the same cash, not the same quantity at a higher unit price.
func PriceByAmount(category Category, p BranchPricing, cashAmount types.Money) (Quote, error) {
	if err := validatePricing(category, p); err != nil {
		return Quote{}, err
	}
	if !cashAmount.IsPositive() {
		return Quote{}, apperror.NewInvalidQuantity("cash amount must be positive")
	}

	tier := startingTier(category)
	unitPrice := p.Retail

	qty := cashAmount.Div(p.Retail)
	if category.Tiered() && p.Threshold > 0 && reachesThreshold(qty, p.Threshold) {
		tier = TierWholesale
		unitPrice = p.Wholesale
		qty = cashAmount.Div(p.Wholesale)
	}

	return buildQuote(p, qty, unitPrice, tier), nil
}

// PriceByQuantity computes the unit price and total for a requested quantity.
// Tier is decided directly by quantity against the threshold; non-tiered
// categories never reach wholesale regardless of quantity.
func PriceByQuantity(category Category, p BranchPricing, quantity types.Quantity) (Quote, error) {
	if err := validatePricing(category, p); err != nil {
		return Quote{}, err
	}
	if quantity <= 0 {
		return Quote{}, apperror.NewInvalidQuantity("quantity must be positive")
	}

	tier := startingTier(category)
	unitPrice := p.Retail

	if category.Tiered() && p.Threshold > 0 && quantity >= p.Threshold {
		tier = TierWholesale
		unitPrice = p.Wholesale
	}

	return buildQuote(p, quantity.Decimal(), unitPrice, tier), nil
}

func validatePricing(category Category, p BranchPricing) error {
	if !category.IsValid() {
		return apperror.NewValidation("unknown product category").
			WithDetail("category", string(category))
	}
	if !p.Retail.IsPositive() {
		return apperror.NewInvalidPrice("retail price must be positive")
	}
	if category.Tiered() && !p.Wholesale.IsPositive() {
		return apperror.NewInvalidPrice("wholesale price must be positive")
	}
	return nil
}

func startingTier(category Category) Tier {
	if category.Tiered() {
		return TierRetail
	}
	return TierStandard
}

// reachesThreshold compares an unscaled decimal quantity to the threshold.
func reachesThreshold(qty decimal.Decimal, threshold types.Quantity) bool {
	return qty.GreaterThanOrEqual(threshold.Decimal())
}

// buildQuote rounds quantity and money to 2 decimal places at the boundary.
// Internal computation keeps full precision so rounding error does not
// compound across a multi-line cart.
func buildQuote(p BranchPricing, qty decimal.Decimal, unitPrice types.Money, tier Tier) Quote {
	roundedQty := qty.Round(2)

	total := types.RoundMoney(roundedQty.Mul(unitPrice))

	savings := decimal.Zero
	if tier == TierWholesale {
		savings = types.RoundMoney(p.Retail.Sub(p.Wholesale).Mul(roundedQty))
	}

	return Quote{
		Quantity:  types.NewQuantityFromDecimal(roundedQty),
		UnitPrice: unitPrice,
		Tier:      tier,
		Total:     total,
		Savings:   savings,
	}
}
