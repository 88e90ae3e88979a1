// Package money holds the canonical fixed-point rules for monetary values and
// quantities: a single round-half-up normalization applied at every boundary,
// and validation of the number of fractional digits accepted on input.
package money

import (
	"github.com/shopspring/decimal"
)

// DefaultPlaces is the number of fractional digits used when no explicit
// configuration is supplied.
const DefaultPlaces int32 = 2

// Normalize rounds d half-up to the given number of fractional digits.
func Normalize(d decimal.Decimal, places int32) decimal.Decimal {
	// decimal.Round rounds half away from zero, which is half-up for the
	// non-negative values this service deals in.
	return d.Round(places)
}

// WithinPlaces reports whether d carries at most the given number of
// fractional digits. Trailing zeros do not count against the limit.
func WithinPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// IsPositive reports whether d is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.Sign() > 0
}
