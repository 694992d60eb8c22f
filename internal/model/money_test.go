package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCentsToDecimal(t *testing.T) {
	assert.Equal(t, "19.99", CentsToDecimal(1999).String())
	assert.Equal(t, "0.05", CentsToDecimal(5).String())
	assert.Equal(t, "0", CentsToDecimal(0).String())
	assert.Equal(t, "-12.5", CentsToDecimal(-1250).String())
}

func TestDecimalToCents(t *testing.T) {
	assert.Equal(t, int64(1999), DecimalToCents(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(500), DecimalToCents(decimal.RequireFromString("5")))
	// Sub-cent precision rounds at the boundary.
	assert.Equal(t, int64(100), DecimalToCents(decimal.RequireFromString("1.004")))
	assert.Equal(t, int64(101), DecimalToCents(decimal.RequireFromString("1.005")))
}

func TestRoundTripCents(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 1999, 999999} {
		assert.Equal(t, cents, DecimalToCents(CentsToDecimal(cents)))
	}
}

func TestOrderStatus(t *testing.T) {
	assert.True(t, OrderStatusSubmitted.Valid())
	assert.True(t, OrderStatusCancelled.Valid())
	assert.False(t, OrderStatus("Lost").Valid())

	assert.True(t, OrderStatusCompleted.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusShipped.Terminal())
}
