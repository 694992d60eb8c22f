package model

import "github.com/shopspring/decimal"

// Money is stored everywhere as integer cents. These helpers do the
// two-decimal conversion at the presentation boundary; nothing in the
// storage or workflow layers holds a floating-point amount.

// CentsToDecimal converts integer cents to a major-unit decimal.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// DecimalToCents converts a major-unit decimal to integer cents,
// rounding half away from zero at the second decimal.
func DecimalToCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}
