package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores the most recent live price for a short time.
type Cache interface {
	Get(ctx context.Context) (float64, bool)
	Set(ctx context.Context, priceUSD float64)
}

// CachedSource serves prices from a Cache and refreshes it from the wrapped
// Source on a miss. Only live prices are cached, never fallbacks.
type CachedSource struct {
	source Source
	cache  Cache
	logger *zap.Logger
}

// NewCachedSource wraps source with cache.
func NewCachedSource(logger *zap.Logger, source Source, cache Cache) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{source: source, cache: cache, logger: logger}
}

// Name implements Source.
func (c *CachedSource) Name() string {
	return c.source.Name()
}

// Live reports whether the wrapped source is live.
func (c *CachedSource) Live() bool {
	return isLive(c.source)
}

// FetchPriceUSD implements Source.
func (c *CachedSource) FetchPriceUSD(ctx context.Context) (float64, error) {
	if price, ok := c.cache.Get(ctx); ok {
		c.logger.Debug("served price from cache",
			zap.String("op", "pricefeed.CachedSource.FetchPriceUSD"),
			zap.Float64("priceUsd", price),
		)
		return price, nil
	}

	price, err := c.source.FetchPriceUSD(ctx)
	if err != nil {
		return 0, err
	}
	c.cache.Set(ctx, price)
	return price, nil
}

// RedisCache is a Cache backed by a single redis key with a TTL.
type RedisCache struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClient connects to redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisCache creates a RedisCache. A zero ttl keeps the key forever.
func NewRedisCache(logger *zap.Logger, client *goredis.Client, key string, ttl time.Duration) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, key: key, ttl: ttl, logger: logger}
}

// Get implements Cache. Misses and read errors both report false.
func (c *RedisCache) Get(ctx context.Context) (float64, bool) {
	value, err := c.client.Get(ctx, c.key).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.Warn("price cache read failed",
				zap.String("op", "pricefeed.RedisCache.Get"),
				zap.String("key", c.key),
				zap.Error(err),
			)
		}
		return 0, false
	}

	price, err := strconv.ParseFloat(value, 64)
	if err != nil || validatePrice(price) != nil {
		c.logger.Warn("ignoring malformed cached price",
			zap.String("op", "pricefeed.RedisCache.Get"),
			zap.String("key", c.key),
			zap.String("value", value),
		)
		return 0, false
	}
	return price, true
}

// Set implements Cache. Write failures are logged and otherwise ignored.
func (c *RedisCache) Set(ctx context.Context, priceUSD float64) {
	value := strconv.FormatFloat(priceUSD, 'f', -1, 64)
	if err := c.client.Set(ctx, c.key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("price cache write failed",
			zap.String("op", "pricefeed.RedisCache.Set"),
			zap.String("key", c.key),
			zap.Error(err),
		)
	}
}
