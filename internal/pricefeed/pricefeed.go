// Package pricefeed resolves the current USD price of the reference asset.
//
// A Source fetches a live price and reports failures wrapped in
// ErrPriceSourceUnavailable. The Resolver turns such failures into an
// explicit fallback Quote; any other error is returned to the caller.
package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// ErrPriceSourceUnavailable wraps every network, status or decoding failure
// of a price source.
var ErrPriceSourceUnavailable = errors.New("price source unavailable")

// ErrResolveFailed marks a Resolve call that produced neither a live nor a
// fallback price.
var ErrResolveFailed = errors.New("price resolution failed")

// Source fetches the current USD price of the reference asset.
type Source interface {
	Name() string
	FetchPriceUSD(ctx context.Context) (float64, error)
}

// Quote is a resolved price together with where it came from. Live is set
// only for prices fetched from a network provider.
type Quote struct {
	PriceUSD   float64   `json:"priceUsd"`
	Source     string    `json:"source"`
	Live       bool      `json:"live"`
	Fallback   bool      `json:"fallback"`
	Reason     string    `json:"reason,omitempty"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// liveReporter is implemented by sources that can tell whether their prices
// come from a network provider. Sources without it are treated as live.
type liveReporter interface {
	Live() bool
}

func isLive(s Source) bool {
	if lr, ok := s.(liveReporter); ok {
		return lr.Live()
	}
	return true
}

// Static is a Source that always answers with a fixed price.
type Static struct {
	PriceUSD float64
}

// Name implements Source.
func (s Static) Name() string {
	return "static"
}

// Live reports false: a configured price is never a market quote.
func (s Static) Live() bool {
	return false
}

// FetchPriceUSD implements Source.
func (s Static) FetchPriceUSD(ctx context.Context) (float64, error) {
	if err := validatePrice(s.PriceUSD); err != nil {
		return 0, err
	}
	return s.PriceUSD, nil
}

// Offline is a Source for runs without network access. It is always
// unavailable, so the Resolver answers with its fallback price.
type Offline struct{}

// Name implements Source.
func (Offline) Name() string {
	return "offline"
}

// Live reports false.
func (Offline) Live() bool {
	return false
}

// FetchPriceUSD implements Source.
func (Offline) FetchPriceUSD(ctx context.Context) (float64, error) {
	return 0, fmt.Errorf("%w: offline mode", ErrPriceSourceUnavailable)
}

// Resolver applies a timeout around a Source and substitutes a fallback
// price when the source is unavailable.
type Resolver struct {
	source   Source
	fallback float64
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewResolver creates a resolver. A non-positive timeout disables the
// resolver's own deadline.
func NewResolver(logger *zap.Logger, source Source, fallbackPriceUSD float64, timeout time.Duration) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if source == nil {
		return nil, fmt.Errorf("price source is required")
	}
	if !(fallbackPriceUSD > 0) || math.IsInf(fallbackPriceUSD, 0) {
		return nil, fmt.Errorf("fallback price must be positive, got %v", fallbackPriceUSD)
	}
	return &Resolver{
		source:   source,
		fallback: fallbackPriceUSD,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// FallbackPriceUSD returns the configured fallback price.
func (r *Resolver) FallbackPriceUSD() float64 {
	return r.fallback
}

// Resolve fetches the live price once. When the source reports
// ErrPriceSourceUnavailable the fallback price is returned with
// Quote.Fallback set. Cancellation of ctx and unexpected errors are returned.
func (r *Resolver) Resolve(ctx context.Context) (Quote, error) {
	fetchCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	price, err := r.source.FetchPriceUSD(fetchCtx)
	if err == nil {
		err = validatePrice(price)
	}
	if err == nil {
		r.logger.Debug("resolved live price",
			zap.String("op", "pricefeed.Resolve"),
			zap.String("source", r.source.Name()),
			zap.Float64("priceUsd", price),
		)
		return Quote{PriceUSD: price, Source: r.source.Name(), Live: isLive(r.source), ResolvedAt: r.now()}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Quote{}, fmt.Errorf("%w: aborted: %w", ErrResolveFailed, ctxErr)
	}
	if !errors.Is(err, ErrPriceSourceUnavailable) {
		return Quote{}, fmt.Errorf("%w: price source %s: %w", ErrResolveFailed, r.source.Name(), err)
	}

	r.logger.Warn("live price unavailable, using fallback price",
		zap.String("op", "pricefeed.Resolve"),
		zap.String("source", r.source.Name()),
		zap.Float64("fallbackPriceUsd", r.fallback),
		zap.Error(err),
	)
	return Quote{
		PriceUSD:   r.fallback,
		Source:     r.source.Name(),
		Fallback:   true,
		Reason:     err.Error(),
		ResolvedAt: r.now(),
	}, nil
}

func validatePrice(price float64) error {
	if !(price > 0) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: non-positive price %v", ErrPriceSourceUnavailable, price)
	}
	return nil
}
