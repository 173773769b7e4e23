// Package format renders projection figures as localized display strings.
package format

import (
	"fmt"
	"math"

	"github.com/iwvelando/sacracalc/pkg/constants"
	"golang.org/x/text/message"
)

// Currency renders an amount with 2 decimals, locale grouping and the
// currency code (e.g. "1,234.56 EUR" or "1.234,56 EUR").
func Currency(p *message.Printer, amount float64, code string) string {
	return p.Sprintf("%.2f %s", amount, code)
}

// USD renders a dollar price with a leading sign (e.g. "$160,950.00 USD").
func USD(p *message.Printer, amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + "$" + p.Sprintf("%.2f", math.Abs(amount)) + " USD"
}

// Quantity renders a reference asset quantity with 8 decimals.
func Quantity(p *message.Printer, quantity float64) string {
	return p.Sprintf("%.8f", quantity)
}

// Units renders a smallest-unit count with locale digit grouping.
func Units(p *message.Printer, units int64) string {
	return p.Sprintf("%d", units)
}

// Percent renders a rate given as a fraction (0.045 → "4.5%").
func Percent(p *message.Printer, fraction float64) string {
	return p.Sprintf("%.1f%%", fraction*constants.PercentageMultiplier)
}

// PercentValue renders a value already expressed in percent.
func PercentValue(p *message.Printer, percent float64) string {
	return p.Sprintf("%.1f%%", percent)
}

// Plain renders an amount with 2 decimals and no grouping, for machine
// readable outputs such as CSV.
func Plain(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
