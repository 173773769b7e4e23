package validation

import (
	"fmt"
	"strings"
)

const (
	// HighInflationThreshold flags currencies whose assumed inflation is unusually high
	HighInflationThreshold = 0.5

	// AggressiveGrowthThreshold flags growth assumptions above 100% a year
	AggressiveGrowthThreshold = 1.0
)

// ValidateCurrency returns warnings for a currency profile that is usable but
// probably misconfigured.
func ValidateCurrency(code string, exchangeRate, inflationRate float64, marketNote string) []string {
	var warnings []string

	if inflationRate >= HighInflationThreshold && inflationRate < 1 {
		warnings = append(warnings, fmt.Sprintf("Currency '%s' assumes %.0f%% annual inflation - projections decay very quickly",
			code, inflationRate*100))
	}

	if strings.EqualFold(code, "USD") && exchangeRate != 1 {
		warnings = append(warnings, fmt.Sprintf("Currency 'USD' has exchange rate %v - the USD baseline is expected to be 1.0",
			exchangeRate))
	}

	if strings.TrimSpace(marketNote) == "" {
		warnings = append(warnings, fmt.Sprintf("Currency '%s' has no market note", code))
	}

	return warnings
}

// ValidateGrowthRate returns warnings for an unusual reference asset growth assumption.
func ValidateGrowthRate(growthRate float64) []string {
	var warnings []string

	if growthRate > AggressiveGrowthThreshold {
		warnings = append(warnings, fmt.Sprintf("Growth assumption of %.0f%%/yr is above %.0f%%/yr",
			growthRate*100, AggressiveGrowthThreshold*100))
	}

	if growthRate < 0 && growthRate > -1 {
		warnings = append(warnings, fmt.Sprintf("Growth assumption of %.0f%%/yr means the reference asset depreciates",
			growthRate*100))
	}

	return warnings
}
