// Package marketcache is the fetch-caching layer between the HTTP handlers
// and the CoinGecko gateway. It serves cached snapshots until a per-endpoint
// staleness window passes and collapses concurrent identical requests into a
// single upstream call. Fetch failures are never cached.
package marketcache

import (
	"fmt"
	"sync"
	"time"

	"crypto-tracker-go/internal/coingecko"
	"crypto-tracker-go/internal/config"
	"crypto-tracker-go/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache wraps a gateway client with time-based staleness and request
// deduplication. Values are immutable snapshots, replaced wholesale on
// refresh.
type Cache struct {
	client coingecko.ClientInterface
	logger *zap.Logger

	coinsTTL      time.Duration
	coinDetailTTL time.Duration
	exchangesTTL  time.Duration
	globalTTL     time.Duration

	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]entry

	// now is replaceable in tests.
	now func() time.Time
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// New creates a cache over client with the staleness windows from cfg.
func New(client coingecko.ClientInterface, cfg *config.Cache, logger *zap.Logger) *Cache {
	return &Cache{
		client:        client,
		logger:        logger,
		coinsTTL:      time.Duration(cfg.CoinsTTL) * time.Second,
		coinDetailTTL: time.Duration(cfg.CoinDetailTTL) * time.Second,
		exchangesTTL:  time.Duration(cfg.ExchangesTTL) * time.Second,
		globalTTL:     time.Duration(cfg.GlobalTTL) * time.Second,
		entries:       make(map[string]entry),
		now:           time.Now,
	}
}

// fresh returns the cached value for key if it is younger than ttl.
func (c *Cache) fresh(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= ttl {
		return nil, false
	}
	return e.value, true
}

// do serves key from the cache or runs fetch through the singleflight group,
// so concurrent identical requests share one upstream call.
func (c *Cache) do(key string, ttl time.Duration, fetch func() (any, error)) (any, error) {
	if v, ok := c.fresh(key, ttl); ok {
		return v, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// Another caller may have refreshed the entry while this one was
		// waiting on the group.
		if v, ok := c.fresh(key, ttl); ok {
			return v, nil
		}

		v, err := fetch()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = entry{value: v, fetchedAt: c.now()}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("Deduplicated concurrent fetch", zap.String("key", key))
	}
	return v, nil
}

// Coins returns the markets listing for opts, at most coinsTTL old. Options
// are normalized before keying, so an empty option set and an explicit
// default one share an entry.
func (c *Cache) Coins(opts coingecko.MarketsOptions) ([]models.CoinMarket, error) {
	opts = opts.WithDefaults()
	key := fmt.Sprintf("coins|%s|%s|%d|%d|%t|%s",
		opts.VsCurrency, opts.Order, opts.PerPage, opts.Page, opts.Sparkline, opts.PriceChangePercentage)

	v, err := c.do(key, c.coinsTTL, func() (any, error) {
		return c.client.ListMarkets(opts)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.CoinMarket), nil
}

// CoinDetail returns the detail record for id, at most coinDetailTTL old.
func (c *Cache) CoinDetail(id string) (*models.CoinDetail, error) {
	v, err := c.do("coin_detail|"+id, c.coinDetailTTL, func() (any, error) {
		return c.client.GetCoinDetail(id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.CoinDetail), nil
}

// CoinChart returns the chart points for id, at most coinDetailTTL old.
func (c *Cache) CoinChart(id, vsCurrency, days string) ([]models.ChartPoint, error) {
	key := fmt.Sprintf("coin_chart|%s|%s|%s", id, vsCurrency, days)

	v, err := c.do(key, c.coinDetailTTL, func() (any, error) {
		return c.client.GetCoinChart(id, vsCurrency, days)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.ChartPoint), nil
}

// Exchanges returns the exchanges listing, at most exchangesTTL old.
func (c *Cache) Exchanges() ([]models.Exchange, error) {
	v, err := c.do("exchanges", c.exchangesTTL, func() (any, error) {
		return c.client.ListExchanges()
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Exchange), nil
}

// Global returns the global market snapshot, at most globalTTL old.
func (c *Cache) Global() (*models.GlobalMarket, error) {
	v, err := c.do("global", c.globalTTL, func() (any, error) {
		return c.client.GetGlobal()
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.GlobalMarket), nil
}
