// Package app wires configuration, price resolution and the projection engine
// together for the sacracalc commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/iwvelando/sacracalc/internal/config"
	"github.com/iwvelando/sacracalc/internal/pricefeed"
	"github.com/iwvelando/sacracalc/internal/projection"
	"github.com/iwvelando/sacracalc/pkg/constants"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options adjust how the application is assembled.
type Options struct {
	// Offline skips the network and prices with the fallback price.
	Offline bool
	// HTTPClient is used for live price lookups; nil uses http.DefaultClient.
	HTTPClient *http.Client
	// Source replaces the configured price source.
	Source pricefeed.Source
}

// Input is a calculation request before the reference price is known.
type Input struct {
	FiatAmount   float64
	CurrencyCode string
	Years        int
	Months       int
	// GrowthRate overrides the configured growth assumption when set.
	GrowthRate *float64
}

// Calculation is a projection together with the price quote it used.
type Calculation struct {
	Result projection.Result `json:"result"`
	Quote  pricefeed.Quote   `json:"quote"`
}

// App is the assembled calculator. It is safe for concurrent use.
type App struct {
	config   *config.Configuration
	engine   *projection.Engine
	resolver *pricefeed.Resolver
	logger   *zap.Logger
	redis    *goredis.Client
}

// New validates conf and builds the engine and price resolver.
func New(ctx context.Context, logger *zap.Logger, conf *config.Configuration, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	table, err := conf.CurrencyTable()
	if err != nil {
		return nil, err
	}

	a := &App{
		config: conf,
		engine: projection.NewEngine(table),
		logger: logger,
	}

	source, err := a.buildSource(ctx, opts)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.resolver, err = pricefeed.NewResolver(logger, source, conf.PriceSource.FallbackPriceUSD, conf.PriceSource.Timeout)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	logger.Debug("application assembled",
		zap.String("op", "app.New"),
		zap.String("priceSource", source.Name()),
		zap.Strings("currencies", table.Codes()),
		zap.Bool("cache", a.redis != nil),
	)
	return a, nil
}

func (a *App) buildSource(ctx context.Context, opts Options) (pricefeed.Source, error) {
	ps := a.config.PriceSource

	var source pricefeed.Source
	switch {
	case opts.Source != nil:
		source = opts.Source
	case opts.Offline:
		return pricefeed.Offline{}, nil
	case ps.Provider == constants.PriceProviderStatic:
		return pricefeed.Static{PriceUSD: ps.StaticPriceUSD}, nil
	default:
		cg, err := pricefeed.NewCoinGecko(a.logger, opts.HTTPClient, ps.Endpoint, ps.AssetID)
		if err != nil {
			return nil, err
		}
		source = cg
	}

	if !a.config.Cache.Enabled {
		return source, nil
	}

	cc := a.config.Cache
	client, err := pricefeed.NewRedisClient(ctx, cc.Address, cc.Password, cc.DB)
	if err != nil {
		// The cache only saves API calls; run without it.
		a.logger.Warn("price cache disabled",
			zap.String("op", "app.buildSource"),
			zap.String("address", cc.Address),
			zap.Error(err),
		)
		return source, nil
	}
	a.redis = client
	return pricefeed.NewCachedSource(a.logger, source, pricefeed.NewRedisCache(a.logger, client, cc.Key, cc.TTL)), nil
}

// Config returns the configuration the application was built from.
func (a *App) Config() *config.Configuration {
	return a.config
}

// Currencies returns the supported currency table.
func (a *App) Currencies() *projection.CurrencyTable {
	return a.engine.Currencies()
}

// Calculate resolves the reference price and computes the projection.
func (a *App) Calculate(ctx context.Context, in Input) (Calculation, error) {
	// Unknown currencies fail before any price lookup.
	if _, err := a.engine.Currencies().Lookup(in.CurrencyCode); err != nil {
		return Calculation{}, err
	}

	quote, err := a.resolver.Resolve(ctx)
	if err != nil {
		return Calculation{}, err
	}

	growth := a.config.Assumptions.GrowthRate
	if in.GrowthRate != nil {
		growth = *in.GrowthRate
	}

	result, err := a.engine.Project(projection.Request{
		FiatAmount:        in.FiatAmount,
		CurrencyCode:      in.CurrencyCode,
		Years:             in.Years,
		Months:            in.Months,
		GrowthRate:        growth,
		ReferencePriceUSD: quote.PriceUSD,
	})
	if err != nil {
		return Calculation{}, err
	}

	a.logger.Debug("projection computed",
		zap.String("op", "app.Calculate"),
		zap.String("currency", result.Currency.Code),
		zap.Float64("priceUsd", quote.PriceUSD),
		zap.Bool("fallback", quote.Fallback),
		zap.Int64("satsDifference", result.SmallestUnitsDifference),
	)
	return Calculation{Result: result, Quote: quote}, nil
}

// Close releases the cache connection, if any.
func (a *App) Close() error {
	if a.redis == nil {
		return nil
	}
	err := a.redis.Close()
	a.redis = nil
	if err != nil && !errors.Is(err, goredis.ErrClosed) {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	return nil
}
