// Package config defines conversion utilities for configuration objects.
package config

import (
	"github.com/iwvelando/sacracalc/internal/projection"
)

// ToProfile converts a CurrencyConfig to the engine's CurrencyProfile.
func (c CurrencyConfig) ToProfile() projection.CurrencyProfile {
	return projection.CurrencyProfile{
		Code:                c.Code,
		ExchangeRateToUSD:   c.ExchangeRateToUSD,
		AnnualInflationRate: c.AnnualInflationRate,
		MarketNote:          c.MarketNote,
	}
}

// CurrencyTable builds the immutable currency lookup used by the engine.
func (c *Configuration) CurrencyTable() (*projection.CurrencyTable, error) {
	profiles := make([]projection.CurrencyProfile, 0, len(c.Currencies))
	for _, currency := range c.Currencies {
		profiles = append(profiles, currency.ToProfile())
	}
	return projection.NewCurrencyTable(profiles)
}
