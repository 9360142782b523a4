// Package core holds the record schema, the partition/reconcile logic and the
// aggregation layer shared by every storage backend.
//
// This file contains parsing and formatting for monetary and quantity values.
// Prices carry 2 decimal places, quantities 3 for continuous units (Kg, Liter)
// and none for count-style units.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice converts a decimal string into a non-negative price rounded
// half-up to 2 decimal places. Both dot (12.34) and comma (12,34) separators
// are accepted.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrNegativePrice
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNegativePrice
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativePrice
	}
	return d.Round(2), nil
}

// ParseQuantity converts a decimal string into a non-negative quantity.
// Continuous units keep 3 decimal places; count-style units must be integral.
func ParseQuantity(s, unit string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrNegativeQuantity
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNegativeQuantity
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeQuantity
	}
	if IsContinuousUnit(unit) {
		return d.Round(3), nil
	}
	if !d.Equal(d.Truncate(0)) {
		return decimal.Zero, ErrFractionalCount
	}
	return d.Truncate(0), nil
}

// FormatPrice renders a price with exactly 2 decimal places.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatQuantity renders a quantity with 3 decimal places for continuous
// units and as a plain integer otherwise.
func FormatQuantity(d decimal.Decimal, unit string) string {
	if IsContinuousUnit(unit) {
		return d.StringFixed(3)
	}
	return d.Truncate(0).String()
}

// PricePerUnit divides price by quantity, treating a zero quantity as 1.
// The zero guard mirrors the historical behavior of the dataset: free or
// zero-quantity entries report their full price as the per-unit price, which
// is a known approximation rather than a true unit price.
func PricePerUnit(price, quantity decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return price
	}
	return price.DivRound(quantity, 6)
}
