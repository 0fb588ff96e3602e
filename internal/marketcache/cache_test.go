package marketcache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"crypto-tracker-go/internal/coingecko"
	"crypto-tracker-go/internal/config"
	"crypto-tracker-go/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeClient counts upstream calls and serves canned responses.
type fakeClient struct {
	marketCalls   atomic.Int64
	detailCalls   atomic.Int64
	exchangeCalls atomic.Int64
	globalCalls   atomic.Int64

	marketsErr error
	// gate, when set, blocks ListMarkets until closed.
	gate chan struct{}
}

func (f *fakeClient) ListMarkets(opts coingecko.MarketsOptions) ([]models.CoinMarket, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.marketCalls.Add(1)
	if f.marketsErr != nil {
		return nil, f.marketsErr
	}
	return []models.CoinMarket{{ID: "bitcoin", CurrentPrice: 50000}}, nil
}

func (f *fakeClient) GetCoinDetail(id string) (*models.CoinDetail, error) {
	f.detailCalls.Add(1)
	return &models.CoinDetail{ID: id}, nil
}

func (f *fakeClient) GetCoinChart(id, vsCurrency, days string) ([]models.ChartPoint, error) {
	return []models.ChartPoint{{Timestamp: 1000, Price: 1}}, nil
}

func (f *fakeClient) ListExchanges() ([]models.Exchange, error) {
	f.exchangeCalls.Add(1)
	return []models.Exchange{{ID: "binance"}}, nil
}

func (f *fakeClient) GetGlobal() (*models.GlobalMarket, error) {
	f.globalCalls.Add(1)
	return &models.GlobalMarket{Markets: 900}, nil
}

func (f *fakeClient) SearchCoins(query string) ([]models.CoinSummary, error) {
	return nil, nil
}

func (f *fakeClient) GetTrendingCoins() ([]models.CoinSummary, error) {
	return nil, nil
}

var testTTLs = config.Cache{CoinsTTL: 120, CoinDetailTTL: 300, ExchangesTTL: 600, GlobalTTL: 300}

func newTestCache(client coingecko.ClientInterface) *Cache {
	return New(client, &testTTLs, zap.NewNop())
}

func TestCoinsServedFromCacheUntilStale(t *testing.T) {
	// Arrange
	fake := &fakeClient{}
	cache := newTestCache(fake)

	now := time.Now()
	cache.now = func() time.Time { return now }

	// Act: two fetches inside the staleness window, one after it
	first, err := cache.Coins(coingecko.MarketsOptions{})
	assert.NoError(t, err)

	now = now.Add(119 * time.Second)
	second, err := cache.Coins(coingecko.MarketsOptions{})
	assert.NoError(t, err)

	now = now.Add(2 * time.Second)
	third, err := cache.Coins(coingecko.MarketsOptions{})
	assert.NoError(t, err)

	// Assert
	assert.Equal(t, int64(2), fake.marketCalls.Load())
	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestCoinsKeyNormalization(t *testing.T) {
	// Arrange
	fake := &fakeClient{}
	cache := newTestCache(fake)

	// Act: zero options and spelled-out defaults are the same request
	_, err := cache.Coins(coingecko.MarketsOptions{})
	assert.NoError(t, err)
	_, err = cache.Coins(coingecko.MarketsOptions{VsCurrency: "usd", Order: "market_cap_desc", PerPage: 100, Page: 1, PriceChangePercentage: "24h"})
	assert.NoError(t, err)

	// A different page is a different entry
	_, err = cache.Coins(coingecko.MarketsOptions{Page: 2})
	assert.NoError(t, err)

	// Assert
	assert.Equal(t, int64(2), fake.marketCalls.Load())
}

func TestConcurrentIdenticalRequestsShareOneFetch(t *testing.T) {
	// Arrange
	fake := &fakeClient{gate: make(chan struct{})}
	cache := newTestCache(fake)

	// Act: ten identical requests racing while the upstream call is blocked
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			coins, err := cache.Coins(coingecko.MarketsOptions{})
			assert.NoError(t, err)
			assert.Len(t, coins, 1)
		}()
	}
	close(fake.gate)
	wg.Wait()

	// Assert
	assert.Equal(t, int64(1), fake.marketCalls.Load())
}

func TestFetchErrorsAreNotCached(t *testing.T) {
	// Arrange
	fake := &fakeClient{marketsErr: errors.New("upstream down")}
	cache := newTestCache(fake)

	// Act
	_, err := cache.Coins(coingecko.MarketsOptions{})
	assert.Error(t, err)

	fake.marketsErr = nil
	coins, err := cache.Coins(coingecko.MarketsOptions{})

	// Assert: the failure did not poison the entry, the retry hit upstream
	assert.NoError(t, err)
	assert.Len(t, coins, 1)
	assert.Equal(t, int64(2), fake.marketCalls.Load())
}

func TestCoinDetailKeyedByID(t *testing.T) {
	// Arrange
	fake := &fakeClient{}
	cache := newTestCache(fake)

	// Act
	btc, err := cache.CoinDetail("bitcoin")
	assert.NoError(t, err)
	eth, err := cache.CoinDetail("ethereum")
	assert.NoError(t, err)
	again, err := cache.CoinDetail("bitcoin")
	assert.NoError(t, err)

	// Assert
	assert.Equal(t, "bitcoin", btc.ID)
	assert.Equal(t, "ethereum", eth.ID)
	assert.Same(t, btc, again)
	assert.Equal(t, int64(2), fake.detailCalls.Load())
}

func TestExchangesAndGlobalCached(t *testing.T) {
	// Arrange
	fake := &fakeClient{}
	cache := newTestCache(fake)

	// Act
	for i := 0; i < 3; i++ {
		_, err := cache.Exchanges()
		assert.NoError(t, err)
		_, err = cache.Global()
		assert.NoError(t, err)
	}

	// Assert
	assert.Equal(t, int64(1), fake.exchangeCalls.Load())
	assert.Equal(t, int64(1), fake.globalCalls.Load())
}
