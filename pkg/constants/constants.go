// Package constants provides shared constants for the sacracalc application.
package constants

import "time"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// MaxHorizonYears is the longest accepted projection horizon in whole years
	MaxHorizonYears = 50

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// SmallestUnitsPerAsset is the number of indivisible subunits in one whole
	// unit of the reference asset (satoshis per bitcoin).
	SmallestUnitsPerAsset = 100_000_000

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Reference asset defaults
const (
	// DefaultGrowthRate is the assumed annual appreciation of the reference asset
	DefaultGrowthRate = 0.45

	// DefaultFallbackPriceUSD is substituted when the live price cannot be fetched
	DefaultFallbackPriceUSD = 111000.0

	// DefaultAssetSymbol is the display symbol of the reference asset
	DefaultAssetSymbol = "BTC"

	// DefaultSmallestUnitName is the display name of the asset's subunit
	DefaultSmallestUnitName = "sats"

	// DefaultCurrency is the currency selected when none is given
	DefaultCurrency = "USD"
)

// Price source defaults
const (
	// PriceProviderCoinGecko fetches the live price from the CoinGecko API
	PriceProviderCoinGecko = "coingecko"

	// PriceProviderStatic always answers with a configured price
	PriceProviderStatic = "static"

	// DefaultPriceEndpoint is the CoinGecko simple price endpoint
	DefaultPriceEndpoint = "https://api.coingecko.com/api/v3/simple/price"

	// DefaultPriceAssetID is the CoinGecko identifier of the reference asset
	DefaultPriceAssetID = "bitcoin"

	// DefaultPriceTimeout bounds a single live price fetch
	DefaultPriceTimeout = 5 * time.Second

	// DefaultCacheTTL is how long a fetched price is reused
	DefaultCacheTTL = time.Minute

	// DefaultCacheKey is the redis key holding the cached price
	DefaultCacheKey = "sacracalc:price:usd"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Locale constants
const (
	// LocaleEnglish selects English output
	LocaleEnglish = "en"

	// LocaleSpanish selects Spanish output
	LocaleSpanish = "es"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. SACRACALC_ASSUMPTIONS_GROWTHRATE
	EnvPrefix = "SACRACALC"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum JSON request body size (64 KB)
	DefaultMaxRequestSizeBytes int64 = 64 * 1024

	// DefaultServerReadTimeout bounds reading a whole request
	DefaultServerReadTimeout = 10 * time.Second

	// DefaultServerWriteTimeout bounds writing a response, price lookup included
	DefaultServerWriteTimeout = 30 * time.Second

	// DefaultServerShutdownTimeout is how long in-flight requests get on shutdown
	DefaultServerShutdownTimeout = 30 * time.Second

	// DefaultMetricsPath is where prometheus metrics are exposed
	DefaultMetricsPath = "/metrics"
)
