package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/sacracalc/internal/projection"
	"github.com/iwvelando/sacracalc/pkg/constants"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Defaults without a file",
			configPath: "",
			wantError:  false,
		},
		{
			name:       "Example configuration",
			configPath: filepath.Join("..", "..", constants.ExampleConfigFile),
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Fatalf("LoadConfiguration() returned nil config")
			}
			if err := config.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	conf, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Assumptions.GrowthRate != constants.DefaultGrowthRate {
		t.Errorf("expected growth rate %v, got %v", constants.DefaultGrowthRate, conf.Assumptions.GrowthRate)
	}
	if conf.PriceSource.FallbackPriceUSD != constants.DefaultFallbackPriceUSD {
		t.Errorf("expected fallback price %v, got %v", constants.DefaultFallbackPriceUSD, conf.PriceSource.FallbackPriceUSD)
	}
	if conf.PriceSource.Timeout != constants.DefaultPriceTimeout {
		t.Errorf("expected timeout %s, got %s", constants.DefaultPriceTimeout, conf.PriceSource.Timeout)
	}
	if conf.PriceSource.Provider != constants.PriceProviderCoinGecko {
		t.Errorf("expected provider %s, got %s", constants.PriceProviderCoinGecko, conf.PriceSource.Provider)
	}
	if conf.Output.Format != constants.OutputFormatPretty || conf.Output.Locale != constants.LocaleEnglish {
		t.Errorf("unexpected output defaults %+v", conf.Output)
	}
	if conf.Cache.Enabled {
		t.Errorf("expected cache disabled by default")
	}

	expected := map[string][2]float64{
		"USD":   {1.0, 0.04},
		"EUR":   {1.1, 0.05},
		"CAD":   {0.75, 0.03},
		"MXN":   {0.059, 0.08},
		"BRICS": {0.2, 0.10},
	}
	table, err := conf.CurrencyTable()
	if err != nil {
		t.Fatalf("CurrencyTable() error = %v", err)
	}
	for code, values := range expected {
		profile, err := table.Lookup(code)
		if err != nil {
			t.Errorf("Lookup(%s) error = %v", code, err)
			continue
		}
		if profile.ExchangeRateToUSD != values[0] || profile.AnnualInflationRate != values[1] {
			t.Errorf("%s: got rate %v inflation %v, expected %v %v",
				code, profile.ExchangeRateToUSD, profile.AnnualInflationRate, values[0], values[1])
		}
		if profile.MarketNote == "" {
			t.Errorf("%s: expected a market note", code)
		}
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	yamlConfig := `
assumptions:
  growthRate: 0.3
currencies:
  - code: GBP
    exchangeRateToUsd: 1.27
    annualInflationRate: 0.035
    marketNote: UK note
priceSource:
  provider: static
  staticPriceUsd: 95000
  fallbackPriceUsd: 110000
  timeout: 2s
output:
  format: csv
  locale: es
`
	conf, err := LoadConfigurationFromReader(strings.NewReader(yamlConfig))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if conf.Assumptions.GrowthRate != 0.3 {
		t.Errorf("expected growth rate 0.3, got %v", conf.Assumptions.GrowthRate)
	}
	if conf.Assumptions.AssetSymbol != constants.DefaultAssetSymbol {
		t.Errorf("expected default asset symbol, got %q", conf.Assumptions.AssetSymbol)
	}
	if len(conf.Currencies) != 1 || conf.Currencies[0].Code != "GBP" || conf.Currencies[0].ExchangeRateToUSD != 1.27 {
		t.Errorf("unexpected currencies %+v", conf.Currencies)
	}
	if conf.PriceSource.Timeout != 2*time.Second {
		t.Errorf("expected timeout 2s, got %s", conf.PriceSource.Timeout)
	}
	if conf.PriceSource.StaticPriceUSD != 95000 {
		t.Errorf("expected static price 95000, got %v", conf.PriceSource.StaticPriceUSD)
	}
	if conf.Output.Format != constants.OutputFormatCSV || conf.Output.Locale != constants.LocaleSpanish {
		t.Errorf("unexpected output %+v", conf.Output)
	}
	if err := conf.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("SACRACALC_ASSUMPTIONS_GROWTHRATE", "0.2")
	t.Setenv("SACRACALC_PRICESOURCE_FALLBACKPRICEUSD", "100000")

	conf, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Assumptions.GrowthRate != 0.2 {
		t.Errorf("expected env growth rate 0.2, got %v", conf.Assumptions.GrowthRate)
	}
	if conf.PriceSource.FallbackPriceUSD != 100000 {
		t.Errorf("expected env fallback 100000, got %v", conf.PriceSource.FallbackPriceUSD)
	}
}

func TestLoadConfigurationInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("currencies: [unterminated"), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("expected error for invalid YAML but got nil")
	}
}

func TestValidateRejectsDegenerateInflation(t *testing.T) {
	conf, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	conf.Currencies = append(conf.Currencies, CurrencyConfig{Code: "ZWL", ExchangeRateToUSD: 0.003, AnnualInflationRate: 1})

	err = conf.Validate()
	if err == nil {
		t.Fatal("expected inflation rate of 1 to be rejected")
	}
	if !errors.Is(err, projection.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	conf := Configuration{
		Currencies:  DefaultCurrencies(),
		Assumptions: Assumptions{GrowthRate: -1},
		PriceSource: PriceSourceConfig{Provider: "yahoo", FallbackPriceUSD: 0, Timeout: -time.Second},
		Cache:       CacheConfig{Enabled: true},
		Output:      OutputConfig{Format: "xml", Locale: "fr"},
	}

	err := conf.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	for _, fragment := range []string{
		"growthRate", "provider", "fallbackPriceUsd", "timeout", "cache.address", "output.format", "output.locale",
	} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("expected error mentioning %q, got %v", fragment, err)
		}
	}
}

func TestValidateRejectsNonFiniteGrowthRate(t *testing.T) {
	for _, growth := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		conf, err := LoadConfiguration("")
		if err != nil {
			t.Fatalf("LoadConfiguration() error = %v", err)
		}
		conf.Assumptions.GrowthRate = growth

		err = conf.Validate()
		if err == nil || !strings.Contains(err.Error(), "growthRate") {
			t.Errorf("expected growthRate %v to be rejected, got %v", growth, err)
		}
	}

	t.Setenv("SACRACALC_ASSUMPTIONS_GROWTHRATE", "+Inf")
	conf, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if err := conf.Validate(); err == nil {
		t.Errorf("expected an infinite growth rate from the environment to be rejected")
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	conf := Configuration{
		Currencies: []CurrencyConfig{
			{Code: "USD", ExchangeRateToUSD: 1, AnnualInflationRate: 0.04, MarketNote: "note"},
			{Code: "VES", ExchangeRateToUSD: 0.03, AnnualInflationRate: 0.6},
		},
		Assumptions: Assumptions{GrowthRate: 2},
		PriceSource: PriceSourceConfig{Provider: constants.PriceProviderStatic},
		Cache:       CacheConfig{Enabled: true, Address: "localhost:6379"},
	}

	warnings := conf.ValidateConfiguration()

	// high inflation, missing note, aggressive growth, static without price, zero TTL
	if len(warnings) != 5 {
		t.Errorf("expected 5 warnings, got %d:", len(warnings))
	}
	for i, warning := range warnings {
		t.Logf("%d. %s", i+1, warning)
	}
}
