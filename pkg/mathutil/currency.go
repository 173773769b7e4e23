// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/sacracalc/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// CompoundFactor returns (1 + rate) ^ years. A zero horizon yields exactly 1.
func CompoundFactor(rate, years float64) float64 {
	if years == 0 {
		return 1
	}
	return math.Pow(1+rate, years)
}

// TruncateToUnits rescales a whole-unit quantity into an integer count of
// subunits: the float product quantity*unitsPerWhole truncated toward zero.
// A product just below an integer stays below it, so 0.29 gives 28999999.
func TruncateToUnits(quantity float64, unitsPerWhole int64) int64 {
	scaled := quantity * float64(unitsPerWhole)
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
		return 0
	}
	return decimal.NewFromFloat(scaled).Truncate(0).IntPart()
}
