// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/iwvelando/sacracalc/pkg/constants"
	"github.com/iwvelando/sacracalc/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for sacracalc.
type Configuration struct {
	Assumptions Assumptions       `mapstructure:"assumptions"`
	Currencies  []CurrencyConfig  `mapstructure:"currencies"`
	PriceSource PriceSourceConfig `mapstructure:"priceSource"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Output      OutputConfig      `mapstructure:"output"`
}

// Assumptions holds the reference asset modelling parameters.
type Assumptions struct {
	GrowthRate       float64 `mapstructure:"growthRate"`
	AssetSymbol      string  `mapstructure:"assetSymbol"`
	SmallestUnitName string  `mapstructure:"smallestUnitName"`
}

// CurrencyConfig holds the reference data of one supported currency.
type CurrencyConfig struct {
	Code                string  `mapstructure:"code"`
	ExchangeRateToUSD   float64 `mapstructure:"exchangeRateToUsd"`
	AnnualInflationRate float64 `mapstructure:"annualInflationRate"`
	MarketNote          string  `mapstructure:"marketNote"`
}

// PriceSourceConfig selects and tunes the live price lookup.
type PriceSourceConfig struct {
	Provider         string        `mapstructure:"provider"` // coingecko, static
	Endpoint         string        `mapstructure:"endpoint"`
	AssetID          string        `mapstructure:"assetId"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FallbackPriceUSD float64       `mapstructure:"fallbackPriceUsd"`
	StaticPriceUSD   float64       `mapstructure:"staticPriceUsd"`
}

// CacheConfig enables an optional redis cache for live prices.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Key      string        `mapstructure:"key"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format"` // pretty, csv, json
	Locale string `mapstructure:"locale"` // en, es
}

// DefaultCurrencies returns the built-in currency reference table.
func DefaultCurrencies() []CurrencyConfig {
	return []CurrencyConfig{
		{Code: "USD", ExchangeRateToUSD: 1, AnnualInflationRate: 0.04,
			MarketNote: "U.S. passed crypto laws to support investment and reduce legal uncertainty."},
		{Code: "EUR", ExchangeRateToUSD: 1.1, AnnualInflationRate: 0.05,
			MarketNote: "Europe introduced MiCA rules to reduce scams and protect users."},
		{Code: "CAD", ExchangeRateToUSD: 0.75, AnnualInflationRate: 0.03,
			MarketNote: "Canada supports crypto with official Bitcoin ETFs."},
		{Code: "MXN", ExchangeRateToUSD: 0.059, AnnualInflationRate: 0.08,
			MarketNote: "Peso is impacted by U.S. inflation and local volatility."},
		{Code: "BRICS", ExchangeRateToUSD: 0.2, AnnualInflationRate: 0.10,
			MarketNote: "BRICS nations exploring digital and gold-backed currencies."},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("assumptions.growthRate", constants.DefaultGrowthRate)
	v.SetDefault("assumptions.assetSymbol", constants.DefaultAssetSymbol)
	v.SetDefault("assumptions.smallestUnitName", constants.DefaultSmallestUnitName)

	v.SetDefault("priceSource.provider", constants.PriceProviderCoinGecko)
	v.SetDefault("priceSource.endpoint", constants.DefaultPriceEndpoint)
	v.SetDefault("priceSource.assetId", constants.DefaultPriceAssetID)
	v.SetDefault("priceSource.timeout", constants.DefaultPriceTimeout)
	v.SetDefault("priceSource.fallbackPriceUsd", constants.DefaultFallbackPriceUSD)
	v.SetDefault("priceSource.staticPriceUsd", 0.0)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.address", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.key", constants.DefaultCacheKey)
	v.SetDefault("cache.ttl", constants.DefaultCacheTTL)

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.locale", constants.LocaleEnglish)
}

func newViper() (*viper.Viper, error) {
	// A .env file is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file, %s", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. An empty path yields the built-in defaults, still
// subject to environment overrides.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetConfigType("yml")
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if len(configuration.Currencies) == 0 {
		configuration.Currencies = DefaultCurrencies()
	}

	return &configuration, nil
}

// Validate returns every configuration problem that would make a projection
// impossible or meaningless, joined into one error.
func (c *Configuration) Validate() error {
	var errs []error

	if _, err := c.CurrencyTable(); err != nil {
		errs = append(errs, fmt.Errorf("currencies: %w", err))
	}

	if g := c.Assumptions.GrowthRate; math.IsNaN(g) || math.IsInf(g, 0) || g <= -1 {
		errs = append(errs, fmt.Errorf("assumptions.growthRate must be a finite number greater than -1, got %v", g))
	}

	switch c.PriceSource.Provider {
	case constants.PriceProviderCoinGecko, constants.PriceProviderStatic:
	default:
		errs = append(errs, fmt.Errorf("priceSource.provider must be %s or %s, got %q",
			constants.PriceProviderCoinGecko, constants.PriceProviderStatic, c.PriceSource.Provider))
	}
	if !(c.PriceSource.FallbackPriceUSD > 0) {
		errs = append(errs, fmt.Errorf("priceSource.fallbackPriceUsd must be positive, got %v", c.PriceSource.FallbackPriceUSD))
	}
	if c.PriceSource.Timeout < 0 {
		errs = append(errs, fmt.Errorf("priceSource.timeout must not be negative, got %s", c.PriceSource.Timeout))
	}

	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Address) == "" {
		errs = append(errs, fmt.Errorf("cache.address is required when the cache is enabled"))
	}

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}
	if err := validation.ValidateLocale(c.Output.Locale); err != nil {
		errs = append(errs, fmt.Errorf("output.locale: %w", err))
	}

	return errors.Join(errs...)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	for _, currency := range c.Currencies {
		warnings = append(warnings, validation.ValidateCurrency(
			currency.Code, currency.ExchangeRateToUSD, currency.AnnualInflationRate, currency.MarketNote)...)
	}

	warnings = append(warnings, validation.ValidateGrowthRate(c.Assumptions.GrowthRate)...)

	if c.PriceSource.Provider == constants.PriceProviderStatic && !(c.PriceSource.StaticPriceUSD > 0) {
		warnings = append(warnings, "Static price source has no staticPriceUsd - the fallback price will always be used")
	}

	if c.Cache.Enabled && c.Cache.TTL == 0 {
		warnings = append(warnings, "Price cache TTL is 0 - a cached price never expires")
	}

	return warnings
}
