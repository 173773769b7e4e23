package projection

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// CurrencyProfile is the static reference data for one supported currency.
type CurrencyProfile struct {
	Code                string  `json:"code"`
	ExchangeRateToUSD   float64 `json:"exchangeRateToUsd"`
	AnnualInflationRate float64 `json:"annualInflationRate"`
	MarketNote          string  `json:"marketNote,omitempty"`
}

// Validate reports whether the profile can be used for compounding.
func (p CurrencyProfile) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return &InputError{Field: "code", Reason: "currency code is required"}
	}
	if !(p.ExchangeRateToUSD > 0) || math.IsInf(p.ExchangeRateToUSD, 0) {
		return &InputError{
			Field:  "exchangeRateToUsd",
			Reason: fmt.Sprintf("currency %s: exchange rate must be positive, got %v", p.Code, p.ExchangeRateToUSD),
		}
	}
	if !(p.AnnualInflationRate >= 0 && p.AnnualInflationRate < 1) {
		return &InputError{
			Field:  "annualInflationRate",
			Reason: fmt.Sprintf("currency %s: inflation rate must be in [0, 1), got %v", p.Code, p.AnnualInflationRate),
		}
	}
	return nil
}

// CurrencyTable is an immutable, validated lookup of currency profiles. It is
// built once at startup and shared read-only between goroutines.
type CurrencyTable struct {
	profiles map[string]CurrencyProfile
	codes    []string
}

// NewCurrencyTable validates every profile and indexes them by upper-cased code.
func NewCurrencyTable(profiles []CurrencyProfile) (*CurrencyTable, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: currency table is empty", ErrInvalidInput)
	}

	table := &CurrencyTable{profiles: make(map[string]CurrencyProfile, len(profiles))}
	for _, profile := range profiles {
		profile.Code = normalizeCode(profile.Code)
		if err := profile.Validate(); err != nil {
			return nil, err
		}
		if _, exists := table.profiles[profile.Code]; exists {
			return nil, fmt.Errorf("%w: duplicate currency code %s", ErrInvalidInput, profile.Code)
		}
		table.profiles[profile.Code] = profile
		table.codes = append(table.codes, profile.Code)
	}
	sort.Strings(table.codes)
	return table, nil
}

// Lookup returns the profile for code, ignoring case and surrounding spaces.
func (t *CurrencyTable) Lookup(code string) (CurrencyProfile, error) {
	profile, ok := t.profiles[normalizeCode(code)]
	if !ok {
		return CurrencyProfile{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return profile, nil
}

// Codes returns the supported currency codes in sorted order.
func (t *CurrencyTable) Codes() []string {
	return append([]string(nil), t.codes...)
}

// Profiles returns every profile sorted by code.
func (t *CurrencyTable) Profiles() []CurrencyProfile {
	profiles := make([]CurrencyProfile, 0, len(t.codes))
	for _, code := range t.codes {
		profiles = append(profiles, t.profiles[code])
	}
	return profiles
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
