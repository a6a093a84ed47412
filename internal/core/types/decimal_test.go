package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_FixedPoint(t *testing.T) {
	q := NewQuantityFromFloat64(4.9)
	assert.Equal(t, int64(49_000), q.Int64Scaled())
	assert.Equal(t, 4.9, q.Float64())
	assert.Equal(t, "4.9000", q.String())
}

func TestQuantity_NegativeString(t *testing.T) {
	q := NewQuantityFromFloat64(-0.25)
	assert.Equal(t, "-0.2500", q.String())
}

func TestQuantity_FromDecimalRounds(t *testing.T) {
	// 3.33333... truncates at the fourth digit, half away from zero.
	d := decimal.NewFromInt(1000).Div(decimal.NewFromInt(300))
	q := NewQuantityFromDecimal(d)
	assert.Equal(t, int64(33_333), q.Int64Scaled())
}

func TestQuantity_DecimalRoundTrip(t *testing.T) {
	q := NewQuantityFromFloat64(12.3456)
	back := NewQuantityFromDecimal(q.Decimal())
	assert.Equal(t, q, back)
}

func TestQuantity_JSON(t *testing.T) {
	type payload struct {
		Qty Quantity `json:"qty"`
	}

	data, err := json.Marshal(payload{Qty: NewQuantityFromFloat64(2.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"qty":2.5000}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"qty":2.5}`), &decoded))
	assert.Equal(t, NewQuantityFromFloat64(2.5), decoded.Qty)

	require.NoError(t, json.Unmarshal([]byte(`{"qty":"0.3333"}`), &decoded))
	assert.Equal(t, Quantity(3_333), decoded.Qty)
}

func TestRoundMoney_Boundary(t *testing.T) {
	m := MustMoney("999.999")
	assert.True(t, RoundMoney(m).Equal(MustMoney("1000.00")))

	// Intermediate arithmetic keeps full precision.
	exact := MustMoney("3.3333").Mul(MustMoney("300"))
	assert.True(t, exact.Equal(MustMoney("999.99")), "got %s", exact)
}
