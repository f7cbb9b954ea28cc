// Package coerce normalizes numeric values that cross the storefront
// boundary: catalog rows, stored carts and request bodies. Malformed input
// never produces an error, only the documented default.
package coerce

import (
	"math"

	"github.com/shopspring/decimal"
)

const DefaultPreparationHours = 24

// PriceOrZero returns a non-negative price. A nil or negative value is
// coerced to zero, matching the storefront rule that an unpriced product is
// displayable but never payable.
func PriceOrZero(price *decimal.Decimal) decimal.Decimal {
	if price == nil || price.IsNegative() {
		return decimal.Zero
	}
	return *price
}

// PreparationHoursOrDefault returns a positive preparation lead time in
// hours. Nil, zero, negative and non-finite values fall back to the 24 hour
// default.
func PreparationHoursOrDefault(hours *float64) float64 {
	if hours == nil {
		return DefaultPreparationHours
	}
	h := *hours
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return DefaultPreparationHours
	}
	return h
}

// ResolvePreparationHours resolves the inventory preparation-time columns,
// where lead time may be stored in hours or in days (days convert x24).
// Hours win when both are present.
func ResolvePreparationHours(hours, days *float64) float64 {
	if hours != nil {
		return PreparationHoursOrDefault(hours)
	}
	if days != nil {
		d := *days
		if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
			return DefaultPreparationHours
		}
		return d * 24
	}
	return DefaultPreparationHours
}
