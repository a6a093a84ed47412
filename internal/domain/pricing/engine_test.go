package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"granel/internal/core/apperror"
	"granel/internal/core/types"
)

// Reference product: liquid, retail 300, wholesale 250, threshold 5L.
func liquidPricing() BranchPricing {
	return BranchPricing{
		Retail:    types.NewMoney(300),
		Wholesale: types.NewMoney(250),
		Threshold: types.NewQuantityFromFloat64(5),
	}
}

func TestPriceByQuantity_BelowThreshold(t *testing.T) {
	q, err := PriceByQuantity(CategoryLiquid, liquidPricing(), types.NewQuantityFromFloat64(4.9))
	require.NoError(t, err)

	assert.Equal(t, TierRetail, q.Tier)
	assert.True(t, q.UnitPrice.Equal(types.NewMoney(300)), "unit price %s", q.UnitPrice)
	assert.True(t, q.Total.Equal(types.NewMoney(1470)), "total %s", q.Total)
	assert.True(t, q.Savings.IsZero())
}

func TestPriceByQuantity_AtThreshold(t *testing.T) {
	q, err := PriceByQuantity(CategoryLiquid, liquidPricing(), types.NewQuantityFromFloat64(5))
	require.NoError(t, err)

	assert.Equal(t, TierWholesale, q.Tier)
	assert.True(t, q.UnitPrice.Equal(types.NewMoney(250)))
	assert.True(t, q.Total.Equal(types.NewMoney(1250)), "total %s", q.Total)
	// (300-250) * 5
	assert.True(t, q.Savings.Equal(types.NewMoney(250)), "savings %s", q.Savings)
}

func TestPriceByAmount_TierCrossing(t *testing.T) {
	// 1500/300 = 5L implied at retail, which reaches the threshold,
	// so quantity must be recomputed at wholesale: 1500/250 = 6L.
	q, err := PriceByAmount(CategoryLiquid, liquidPricing(), types.NewMoney(1500))
	require.NoError(t, err)

	assert.Equal(t, TierWholesale, q.Tier)
	assert.Equal(t, types.NewQuantityFromFloat64(6), q.Quantity)
	assert.True(t, q.Total.Equal(types.NewMoney(1500)), "total %s", q.Total)
}

func TestPriceByAmount_BelowThreshold(t *testing.T) {
	q, err := PriceByAmount(CategoryLiquid, liquidPricing(), types.NewMoney(900))
	require.NoError(t, err)

	assert.Equal(t, TierRetail, q.Tier)
	assert.Equal(t, types.NewQuantityFromFloat64(3), q.Quantity)
	assert.True(t, q.Total.Equal(types.NewMoney(900)))
}

func TestPriceByQuantity_NoTieringForDryGoods(t *testing.T) {
	p := BranchPricing{
		Retail:    types.NewMoney(120),
		Wholesale: types.NewMoney(120),
		Threshold: 0,
	}

	for _, qty := range []float64{1, 10, 1000} {
		q, err := PriceByQuantity(CategoryDryGoods, p, types.NewQuantityFromFloat64(qty))
		require.NoError(t, err)
		assert.Equal(t, TierStandard, q.Tier)
		assert.True(t, q.UnitPrice.Equal(types.NewMoney(120)))
	}
}

func TestPriceByQuantity_BulkFoodIgnoresThreshold(t *testing.T) {
	p := BranchPricing{
		Retail:    types.NewMoney(80),
		Wholesale: types.NewMoney(60),
		Threshold: types.NewQuantityFromFloat64(2),
	}

	q, err := PriceByQuantity(CategoryBulkFood, p, types.NewQuantityFromFloat64(50))
	require.NoError(t, err)
	assert.Equal(t, TierStandard, q.Tier)
	assert.True(t, q.UnitPrice.Equal(types.NewMoney(80)))
}

func TestPriceByAmount_RoundsAtBoundary(t *testing.T) {
	p := BranchPricing{
		Retail:    types.NewMoney(300),
		Wholesale: types.NewMoney(250),
		Threshold: types.NewQuantityFromFloat64(5),
	}

	// 1000/300 = 3.3333... -> quantity rounds to 3.33
	q, err := PriceByAmount(CategoryLiquid, p, types.NewMoney(1000))
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantityFromFloat64(3.33), q.Quantity)
	assert.True(t, q.Total.Equal(types.NewMoney(999)), "total %s", q.Total)
}

func TestPricing_InvalidInputs(t *testing.T) {
	p := liquidPricing()

	_, err := PriceByQuantity(CategoryLiquid, p, 0)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))

	_, err = PriceByAmount(CategoryLiquid, p, types.NewMoney(-5))
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))

	bad := p
	bad.Retail = types.NewMoney(0)
	_, err = PriceByQuantity(CategoryLiquid, bad, types.NewQuantityFromFloat64(1))
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidPrice))

	_, err = PriceByQuantity(Category("frozen"), p, types.NewQuantityFromFloat64(1))
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
