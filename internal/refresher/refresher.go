// Package refresher keeps the store's transient coin cache warm by
// periodically refetching the first markets page through the caching layer.
package refresher

import (
	"context"
	"time"

	"crypto-tracker-go/internal/coingecko"
	"crypto-tracker-go/internal/models"
	"crypto-tracker-go/internal/store"
	"go.uber.org/zap"
)

// CoinSource provides the markets listing, typically the market cache.
type CoinSource interface {
	Coins(opts coingecko.MarketsOptions) ([]models.CoinMarket, error)
}

// Refresher is the background coin-cache refresh loop.
type Refresher struct {
	logger   *zap.Logger
	source   CoinSource
	store    *store.Store
	interval time.Duration
	perPage  int
}

// New creates a refresher reading from source into st.
func New(logger *zap.Logger, source CoinSource, st *store.Store, interval time.Duration, perPage int) *Refresher {
	return &Refresher{
		logger:   logger,
		source:   source,
		store:    st,
		interval: interval,
		perPage:  perPage,
	}
}

// Run refreshes once immediately and then on every tick until ctx is done.
// A failed refresh is logged and the loop continues; the store keeps its
// previous snapshot.
func (r *Refresher) Run(ctx context.Context) {
	r.logger.Info("Starting coin refresher", zap.Duration("interval", r.interval))

	if err := r.Refresh(); err != nil {
		r.logger.Error("Initial coin refresh failed", zap.Error(err))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Stopping coin refresher...")
			return
		case <-ticker.C:
			if err := r.Refresh(); err != nil {
				r.logger.Error("Coin refresh failed", zap.Error(err))
			}
		}
	}
}

// Refresh fetches the first markets page in the store's display currency and
// replaces the store's coin snapshot wholesale.
func (r *Refresher) Refresh() error {
	coins, err := r.source.Coins(coingecko.MarketsOptions{
		VsCurrency: r.store.Currency(),
		PerPage:    r.perPage,
	})
	if err != nil {
		return err
	}

	r.store.SetCoins(coins)
	r.store.SetLastUpdated(time.Now().UnixMilli())
	r.logger.Debug("Refreshed coin cache", zap.Int("count", len(coins)))
	return nil
}
