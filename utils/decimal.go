package utils

import "github.com/shopspring/decimal"

// MoneyPlaces is the single rounding precision for balances and identity checks.
const MoneyPlaces int32 = 2

// SafeDecimal is the one place missing amounts are defaulted: NULL reads as zero.
func SafeDecimal(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// NullDecimal wraps a present value, mostly for tests and seed data.
func NullDecimal(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// Round2 rounds half away from zero to two places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// WithinTolerance reports |a-b| <= tolerance.
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
