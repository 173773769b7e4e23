package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const maxResponseBytes = 64 * 1024

// CoinGecko fetches prices from the CoinGecko simple price endpoint, e.g.
// GET /api/v3/simple/price?ids=bitcoin&vs_currencies=usd returning
// {"bitcoin":{"usd":111000}}.
type CoinGecko struct {
	client   *http.Client
	endpoint string
	assetID  string
	logger   *zap.Logger
}

// NewCoinGecko creates a CoinGecko source. A nil client uses http.DefaultClient;
// deadlines come from the caller's context.
func NewCoinGecko(logger *zap.Logger, client *http.Client, endpoint, assetID string) (*CoinGecko, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid price endpoint %q: %w", endpoint, err)
	}
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil, fmt.Errorf("asset id is required")
	}
	return &CoinGecko{client: client, endpoint: endpoint, assetID: assetID, logger: logger}, nil
}

// Name implements Source.
func (c *CoinGecko) Name() string {
	return "coingecko"
}

// FetchPriceUSD implements Source.
func (c *CoinGecko) FetchPriceUSD(ctx context.Context) (float64, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return 0, fmt.Errorf("invalid price endpoint %q: %w", c.endpoint, err)
	}
	query := u.Query()
	query.Set("ids", c.assetID)
	query.Set("vs_currencies", "usd")
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPriceSourceUnavailable, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close price response body",
				zap.String("op", "pricefeed.CoinGecko.FetchPriceUSD"),
				zap.Error(closeErr),
			)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: unexpected status %d", ErrPriceSourceUnavailable, resp.StatusCode)
	}

	var payload map[string]map[string]float64
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return 0, fmt.Errorf("%w: failed to decode response: %v", ErrPriceSourceUnavailable, err)
	}

	price, ok := payload[c.assetID]["usd"]
	if !ok {
		return 0, fmt.Errorf("%w: response has no usd price for %s", ErrPriceSourceUnavailable, c.assetID)
	}
	if err := validatePrice(price); err != nil {
		return 0, err
	}

	c.logger.Debug("fetched live price",
		zap.String("op", "pricefeed.CoinGecko.FetchPriceUSD"),
		zap.String("asset", c.assetID),
		zap.Float64("priceUsd", price),
	)
	return price, nil
}
