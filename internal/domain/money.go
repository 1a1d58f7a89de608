package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// MinorUnits converts a major-unit price to the integer amount the payment
// provider expects: price multiplied by 100 and truncated toward zero.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Mul(hundred).Truncate(0).IntPart()
}

// FromMinorUnits converts a provider amount back to major units.
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

// PriceFromFloat converts a JSON number into a price with cent precision.
// Digits past the second decimal are truncated, matching MinorUnits.
func PriceFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Truncate(2)
}
