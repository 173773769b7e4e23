package mathutil

import (
	"math"
	"testing"

	"github.com/iwvelando/sacracalc/pkg/constants"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		val1      float64
		val2      float64
		tolerance float64
		expected  bool
	}{
		{"Exactly equal", 1.0, 1.0, 0.1, true},
		{"Within tolerance", 1.0, 1.05, 0.1, true},
		{"Outside tolerance", 1.0, 1.15, 0.1, false},
		{"Zero tolerance exact match", 1.0, 1.0, 0.0, true},
		{"Zero tolerance no match", 1.0, 1.001, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithinTolerance(tt.val1, tt.val2, tt.tolerance)
			if result != tt.expected {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, expected %v",
					tt.val1, tt.val2, tt.tolerance, result, tt.expected)
			}
		})
	}
}

func TestCalculatePercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		total    float64
		expected float64
	}{
		{"50% of 100", 50.0, 100.0, 50.0},
		{"25% of 200", 50.0, 200.0, 25.0},
		{"Zero value", 0.0, 100.0, 0.0},
		{"Zero total", 50.0, 0.0, 0.0},
		{"Negative value", -50.0, 100.0, -50.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePercentage(tt.value, tt.total)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("CalculatePercentage(%v, %v) = %v, expected %v",
					tt.value, tt.total, result, tt.expected)
			}
		})
	}
}

func TestCompoundFactor(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		years    float64
		expected float64
	}{
		{"Zero horizon is identity", 0.45, 0, 1},
		{"One year growth", 0.45, 1, 1.45},
		{"Two years growth", 0.10, 2, 1.21},
		{"Decay expressed as negative rate", -0.04, 1, 0.96},
		{"Half year", 0.21, 0.5, 1.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CompoundFactor(tt.rate, tt.years)
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("CompoundFactor(%v, %v) = %v, expected %v", tt.rate, tt.years, result, tt.expected)
			}
		})
	}

	if CompoundFactor(0.45, 0) != 1 {
		t.Errorf("CompoundFactor at zero horizon must be exactly 1")
	}
}

func TestTruncateToUnits(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		expected int64
	}{
		{"One whole unit", 1, constants.SmallestUnitsPerAsset},
		{"Truncates fractional subunit", 100.0 / 111000.0, 90090},
		{"Does not round up", 0.000000019, 1},
		{"Product just below an integer is truncated", 0.29, 28999999},
		{"Quantity derived from an amount and price", 32190.0 / 111000.0, 28999999},
		{"Exact product is kept", 0.001, 100000},
		{"Zero", 0, 0},
		{"Negative truncates toward zero", -0.000000019, -1},
		{"NaN maps to zero", math.NaN(), 0},
		{"Infinity maps to zero", math.Inf(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TruncateToUnits(tt.quantity, constants.SmallestUnitsPerAsset)
			if result != tt.expected {
				t.Errorf("TruncateToUnits(%v) = %d, expected %d", tt.quantity, result, tt.expected)
			}
		})
	}
}
