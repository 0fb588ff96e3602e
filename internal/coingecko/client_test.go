package coingecko

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"crypto-tracker-go/internal/apperr"
	"crypto-tracker-go/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a new test server and a Client configured to use it.
func setupTestServer(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	c := &Client{
		client:  resty.New().SetBaseURL(server.URL),
		logger:  zap.NewNop(), // Use a no-op logger for tests
		limiter: rate.NewLimiter(rate.Inf, 1),
	}

	return c, server
}

func marketRows(n int) []map[string]any {
	rows := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, map[string]any{
			"id":                          fmt.Sprintf("coin-%d", i),
			"symbol":                      fmt.Sprintf("c%d", i),
			"name":                        fmt.Sprintf("Coin %d", i),
			"current_price":               float64(1000 - i),
			"market_cap_rank":             i + 1,
			"price_change_percentage_24h": 1.5,
		})
	}
	return rows
}

func TestListMarkets(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/coins/markets", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "usd", q.Get("vs_currency"))
			assert.Equal(t, "market_cap_desc", q.Get("order"))
			assert.Equal(t, "100", q.Get("per_page"))
			assert.Equal(t, "1", q.Get("page"))
			assert.Equal(t, "false", q.Get("sparkline"))
			assert.Equal(t, "24h", q.Get("price_change_percentage"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(marketRows(100))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		// Act
		coins, err := c.ListMarkets(MarketsOptions{})

		// Assert
		assert.NoError(t, err)
		assert.Len(t, coins, 100)
		// Upstream order is preserved untouched
		assert.Equal(t, "coin-0", coins[0].ID)
		assert.Equal(t, "coin-99", coins[99].ID)
	})

	t.Run("ChangeWindowsKeyedByCurrency", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1h,24h,7d,30d", r.URL.Query().Get("price_change_percentage"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]map[string]any{{
				"id":            "bitcoin",
				"current_price": 50000.0,
				"price_change_percentage_1h_in_currency":  map[string]float64{"eur": 0.2},
				"price_change_percentage_24h_in_currency": map[string]float64{"eur": -1.1},
				"price_change_percentage_7d_in_currency":  map[string]float64{"eur": 4.5},
				"price_change_percentage_30d_in_currency": map[string]float64{"eur": 9.9},
			}})
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		// Act
		coins, err := c.ListMarkets(MarketsOptions{
			VsCurrency:            "eur",
			PriceChangePercentage: "1h,24h,7d,30d",
		})

		// Assert
		assert.NoError(t, err)
		assert.Len(t, coins, 1)
		assert.Equal(t, 0.2, coins[0].PriceChangePercentage1hInCurrency["eur"])
		assert.Equal(t, -1.1, coins[0].PriceChangePercentage24hInCurrency["eur"])
		assert.Equal(t, 4.5, coins[0].PriceChangePercentage7dInCurrency["eur"])
		assert.Equal(t, 9.9, coins[0].PriceChangePercentage30dInCurrency["eur"])
	})

	t.Run("UpstreamError", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"status":{"error_code":429}}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		// Act
		coins, err := c.ListMarkets(MarketsOptions{})

		// Assert
		assert.Error(t, err)
		assert.True(t, apperr.IsFetch(err))
		assert.Contains(t, err.Error(), "Failed to fetch coins data")
		assert.Nil(t, coins)
	})
}

func TestGetCoinDetail(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/coins/bitcoin", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "false", q.Get("localization"))
			assert.Equal(t, "false", q.Get("tickers"))
			assert.Equal(t, "true", q.Get("market_data"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": "bitcoin",
				"symbol": "btc",
				"name": "Bitcoin",
				"hashing_algorithm": "SHA-256",
				"genesis_date": "2009-01-03",
				"market_data": {
					"current_price": {"usd": 50000, "eur": 46000},
					"ath": {"usd": 69000}
				}
			}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		// Act
		detail, err := c.GetCoinDetail("bitcoin")

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, "bitcoin", detail.ID)
		assert.Equal(t, "SHA-256", detail.HashingAlgorithm)
		assert.Equal(t, 46000.0, detail.MarketData.CurrentPrice["eur"])
		assert.Equal(t, 69000.0, detail.MarketData.ATH["usd"])
	})

	t.Run("ErrorNamesTheCoin", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		// Act
		detail, err := c.GetCoinDetail("no-such-coin")

		// Assert
		assert.Error(t, err)
		assert.True(t, apperr.IsFetch(err))
		assert.Contains(t, err.Error(), "Failed to fetch details for no-such-coin")
		assert.Nil(t, detail)
	})
}

func TestGetCoinChart(t *testing.T) {
	t.Run("ZipsParallelArrays", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
			assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
			assert.Equal(t, "7", r.URL.Query().Get("days"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"prices": [[1000, 1.0], [2000, 2.0], [3000, 3.0], [4000, 4.0], [5000, 5.0]],
				"market_caps": [[1000, 10.0], [2000, 20.0], [3000, 30.0]],
				"total_volumes": [[1000, 100.0], [2000, 200.0], [3000, 300.0], [4000, 400.0]]
			}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		// Act
		points, err := c.GetCoinChart("bitcoin", "", "")

		// Assert
		assert.NoError(t, err)
		assert.Len(t, points, 5)
		assert.Equal(t, int64(1000), points[0].Timestamp)
		assert.Equal(t, 1.0, points[0].Price)
		assert.Equal(t, 10.0, *points[0].MarketCap)
		assert.Equal(t, 100.0, *points[0].TotalVolume)

		// Shorter cap/volume arrays leave the trailing fields absent
		assert.Nil(t, points[3].MarketCap)
		assert.Equal(t, 400.0, *points[3].TotalVolume)
		assert.Nil(t, points[4].MarketCap)
		assert.Nil(t, points[4].TotalVolume)
	})

	t.Run("UpstreamError", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		// Act
		points, err := c.GetCoinChart("bitcoin", "usd", "30")

		// Assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Failed to fetch chart data for bitcoin")
		assert.Nil(t, points)
	})
}

func TestListExchanges(t *testing.T) {
	// Arrange
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchanges", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "binance", "name": "Binance", "trust_score": 10, "trust_score_rank": 1, "trade_volume_24h_btc": 250000.5},
			{"id": "kraken", "name": "Kraken", "trust_score": 10, "trust_score_rank": 2, "country": "United States", "year_established": 2011}
		]`))
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	// Act
	exchanges, err := c.ListExchanges()

	// Assert
	assert.NoError(t, err)
	assert.Len(t, exchanges, 2)
	assert.Equal(t, "binance", exchanges[0].ID)
	assert.Equal(t, 10, exchanges[0].TrustScore)
	assert.Equal(t, 250000.5, exchanges[0].TradeVolume24hBTC)
	assert.Equal(t, "United States", *exchanges[1].Country)
	assert.Equal(t, 2011, *exchanges[1].YearEstablished)
}

func TestGetGlobal(t *testing.T) {
	// Arrange
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/global", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {
				"active_cryptocurrencies": 13000,
				"markets": 900,
				"total_market_cap": {"usd": 2500000000000},
				"market_cap_percentage": {"btc": 52.1, "eth": 17.3}
			}
		}`))
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	// Act
	global, err := c.GetGlobal()

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 13000, global.ActiveCryptocurrencies)
	assert.Equal(t, 52.1, global.MarketCapPercentage["btc"])
}

func TestSearchCoins(t *testing.T) {
	// Arrange
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "bit", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"coins": [{"id": "bitcoin", "name": "Bitcoin", "symbol": "BTC", "thumb": "thumb.png", "market_cap_rank": 1}]}`))
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	// Act
	coins, err := c.SearchCoins("bit")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, []models.CoinSummary{{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Thumb: "thumb.png", MarketCapRank: 1}}, coins)
}

func TestGetTrendingCoins(t *testing.T) {
	// Arrange
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/trending", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"coins": [
			{"item": {"id": "pepe", "name": "Pepe", "symbol": "PEPE", "market_cap_rank": 40}},
			{"item": {"id": "solana", "name": "Solana", "symbol": "SOL", "market_cap_rank": 5}}
		]}`))
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	// Act
	coins, err := c.GetTrendingCoins()

	// Assert
	assert.NoError(t, err)
	assert.Len(t, coins, 2)
	assert.Equal(t, "pepe", coins[0].ID)
	assert.Equal(t, "solana", coins[1].ID)
}
