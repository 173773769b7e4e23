// Package datetime provides parsing and formatting for projection horizons.
package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/sacracalc/pkg/constants"
)

// Horizon is a whole number of years plus 0-11 months.
type Horizon struct {
	Years  int
	Months int
}

// NewHorizon normalizes a years/months pair so that months stays below 12.
func NewHorizon(years, months int) (Horizon, error) {
	if years < 0 || months < 0 {
		return Horizon{}, fmt.Errorf("horizon must not be negative, got %dy %dm", years, months)
	}
	total := years*constants.MonthsPerYear + months
	return Horizon{Years: total / constants.MonthsPerYear, Months: total % constants.MonthsPerYear}, nil
}

// Validate rejects horizons longer than constants.MaxHorizonYears whole years.
func (h Horizon) Validate() error {
	if h.Years > constants.MaxHorizonYears {
		return fmt.Errorf("horizon %s exceeds the maximum of %d years", h, constants.MaxHorizonYears)
	}
	return nil
}

// String renders the horizon as e.g. "2y 6m".
func (h Horizon) String() string {
	return FormatHorizon(h.Years, h.Months)
}

// FormatHorizon renders years and months as e.g. "2y 6m".
func FormatHorizon(years, months int) string {
	return fmt.Sprintf("%dy %dm", years, months)
}

// ParseHorizon accepts forms such as "2y6m", "2y 6m", "3y", "18m" or "1Y 2M".
// Months above 11 are carried into years.
func ParseHorizon(value string) (Horizon, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return Horizon{}, fmt.Errorf("empty horizon")
	}

	var years, months int
	var seenYears, seenMonths bool
	rest := trimmed
	for rest != "" {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		idx := 0
		for idx < len(rest) && rest[idx] >= '0' && rest[idx] <= '9' {
			idx++
		}
		if idx == 0 || idx == len(rest) {
			return Horizon{}, fmt.Errorf("invalid horizon %q: expected <n>y and/or <n>m", value)
		}
		n, err := strconv.Atoi(rest[:idx])
		if err != nil {
			return Horizon{}, fmt.Errorf("invalid horizon %q: %w", value, err)
		}
		switch rest[idx] {
		case 'y':
			if seenYears || seenMonths {
				return Horizon{}, fmt.Errorf("invalid horizon %q: years must appear once, before months", value)
			}
			years, seenYears = n, true
		case 'm':
			if seenMonths {
				return Horizon{}, fmt.Errorf("invalid horizon %q: months must appear once", value)
			}
			months, seenMonths = n, true
		default:
			return Horizon{}, fmt.Errorf("invalid horizon %q: unknown unit %q", value, rest[idx])
		}
		rest = rest[idx+1:]
	}

	return NewHorizon(years, months)
}
