package coingecko

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"crypto-tracker-go/internal/apperr"
	"crypto-tracker-go/internal/config"
	"crypto-tracker-go/internal/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultCurrency   = "usd"
	defaultOrder      = "market_cap_desc"
	defaultPerPage    = 100
	defaultPage       = 1
	defaultChangeSpec = "24h"
	defaultChartDays  = "7"

	exchangesPerPage = 100
	exchangesPage    = 1
)

// ClientInterface defines the interface for the CoinGecko REST API client.
type ClientInterface interface {
	ListMarkets(opts MarketsOptions) ([]models.CoinMarket, error)
	GetCoinDetail(id string) (*models.CoinDetail, error)
	GetCoinChart(id, vsCurrency, days string) ([]models.ChartPoint, error)
	ListExchanges() ([]models.Exchange, error)
	GetGlobal() (*models.GlobalMarket, error)
	SearchCoins(query string) ([]models.CoinSummary, error)
	GetTrendingCoins() ([]models.CoinSummary, error)
}

// Client is a client for the CoinGecko REST API. It is a pure
// request/response mapping: no retries, no caching, no side effects beyond
// the network call. Every call is bounded by the configured timeout.
// It implements the ClientInterface.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new CoinGecko REST API client.
func NewClient(cfg *config.CoinGecko, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	// The public API throttles aggressively, so requests are paced
	// client-side. rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// MarketsOptions are the recognized options of the markets listing. The zero
// value of each field means "use the upstream default".
type MarketsOptions struct {
	VsCurrency string
	Order      string
	PerPage    int
	Page       int
	Sparkline  bool
	// PriceChangePercentage selects the change windows, e.g. "24h" or a
	// comma-joined set like "1h,24h,7d,30d".
	PriceChangePercentage string
}

// WithDefaults fills every unset option with its documented default.
func (o MarketsOptions) WithDefaults() MarketsOptions {
	if o.VsCurrency == "" {
		o.VsCurrency = defaultCurrency
	}
	if o.Order == "" {
		o.Order = defaultOrder
	}
	if o.PerPage == 0 {
		o.PerPage = defaultPerPage
	}
	if o.Page == 0 {
		o.Page = defaultPage
	}
	if o.PriceChangePercentage == "" {
		o.PriceChangePercentage = defaultChangeSpec
	}
	return o
}

// doGet executes a single GET request after waiting for the rate limiter.
// Transport errors, timeouts and non-2xx statuses all collapse into one
// error; the callers wrap it into the operation's FetchError.
func (c *Client) doGet(path string, req *resty.Request) (*resty.Response, error) {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	c.logger.Debug("Executing request", zap.String("url", c.client.BaseURL+path))
	resp, err := req.Get(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
	}
	return resp, nil
}

// ListMarkets fetches one page of the markets listing, one CoinMarket per
// coin, in the order the upstream sort returns them.
func (c *Client) ListMarkets(opts MarketsOptions) ([]models.CoinMarket, error) {
	opts = opts.WithDefaults()

	var coins []models.CoinMarket
	req := c.client.R().
		SetQueryParams(map[string]string{
			"vs_currency":             opts.VsCurrency,
			"order":                   opts.Order,
			"per_page":                strconv.Itoa(opts.PerPage),
			"page":                    strconv.Itoa(opts.Page),
			"sparkline":               strconv.FormatBool(opts.Sparkline),
			"price_change_percentage": opts.PriceChangePercentage,
		}).
		SetResult(&coins)

	if _, err := c.doGet("/coins/markets", req); err != nil {
		c.logger.Error("Failed to fetch coins", zap.Error(err))
		return nil, apperr.NewFetch("Failed to fetch coins data", err)
	}

	return coins, nil
}

// GetCoinDetail fetches the detailed record of a single coin. The id must be
// non-empty; callers validate that before reaching the gateway.
func (c *Client) GetCoinDetail(id string) (*models.CoinDetail, error) {
	var detail models.CoinDetail
	req := c.client.R().
		SetQueryParams(map[string]string{
			"localization":   "false",
			"tickers":        "false",
			"market_data":    "true",
			"community_data": "true",
			"developer_data": "true",
			"sparkline":      "false",
		}).
		SetResult(&detail)

	if _, err := c.doGet("/coins/"+id, req); err != nil {
		c.logger.Error("Failed to fetch coin details", zap.String("id", id), zap.Error(err))
		return nil, apperr.NewFetch(fmt.Sprintf("Failed to fetch details for %s", id), err)
	}

	return &detail, nil
}

// chartResponse mirrors the upstream market-chart payload: three parallel
// arrays of [timestamp, value] pairs.
type chartResponse struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// GetCoinChart fetches a coin's market chart and zips the three upstream
// arrays by index into one point per price sample. Market cap and volume are
// left unset for indices beyond the end of their arrays.
func (c *Client) GetCoinChart(id, vsCurrency, days string) ([]models.ChartPoint, error) {
	if vsCurrency == "" {
		vsCurrency = defaultCurrency
	}
	if days == "" {
		days = defaultChartDays
	}

	var chart chartResponse
	req := c.client.R().
		SetQueryParams(map[string]string{
			"vs_currency": vsCurrency,
			"days":        days,
		}).
		SetResult(&chart)

	if _, err := c.doGet("/coins/"+id+"/market_chart", req); err != nil {
		c.logger.Error("Failed to fetch chart data", zap.String("id", id), zap.Error(err))
		return nil, apperr.NewFetch(fmt.Sprintf("Failed to fetch chart data for %s", id), err)
	}

	points := make([]models.ChartPoint, 0, len(chart.Prices))
	for i, sample := range chart.Prices {
		if len(sample) < 2 {
			continue
		}
		point := models.ChartPoint{
			Timestamp: int64(sample[0]),
			Price:     sample[1],
		}
		if i < len(chart.MarketCaps) && len(chart.MarketCaps[i]) >= 2 {
			v := chart.MarketCaps[i][1]
			point.MarketCap = &v
		}
		if i < len(chart.TotalVolumes) && len(chart.TotalVolumes[i]) >= 2 {
			v := chart.TotalVolumes[i][1]
			point.TotalVolume = &v
		}
		points = append(points, point)
	}

	return points, nil
}

// ListExchanges fetches the first page of exchanges, 100 per page, in
// upstream trust-rank order.
func (c *Client) ListExchanges() ([]models.Exchange, error) {
	var exchanges []models.Exchange
	req := c.client.R().
		SetQueryParams(map[string]string{
			"per_page": strconv.Itoa(exchangesPerPage),
			"page":     strconv.Itoa(exchangesPage),
		}).
		SetResult(&exchanges)

	if _, err := c.doGet("/exchanges", req); err != nil {
		c.logger.Error("Failed to fetch exchanges", zap.Error(err))
		return nil, apperr.NewFetch("Failed to fetch exchanges data", err)
	}

	return exchanges, nil
}

// globalResponse is the single-level envelope around the global snapshot.
type globalResponse struct {
	Data models.GlobalMarket `json:"data"`
}

// GetGlobal fetches the aggregate global market snapshot.
func (c *Client) GetGlobal() (*models.GlobalMarket, error) {
	var global globalResponse
	req := c.client.R().SetResult(&global)

	if _, err := c.doGet("/global", req); err != nil {
		c.logger.Error("Failed to fetch global market data", zap.Error(err))
		return nil, apperr.NewFetch("Failed to fetch global market data", err)
	}

	return &global.Data, nil
}

// searchResponse holds the coin summaries of a search result.
type searchResponse struct {
	Coins []models.CoinSummary `json:"coins"`
}

// SearchCoins searches coins by name or symbol.
func (c *Client) SearchCoins(query string) ([]models.CoinSummary, error) {
	var result searchResponse
	req := c.client.R().
		SetQueryParam("query", query).
		SetResult(&result)

	if _, err := c.doGet("/search", req); err != nil {
		c.logger.Error("Failed to search coins", zap.String("query", query), zap.Error(err))
		return nil, apperr.NewFetch("Failed to search coins", err)
	}

	return result.Coins, nil
}

// trendingResponse wraps each trending coin in an item envelope.
type trendingResponse struct {
	Coins []struct {
		Item models.CoinSummary `json:"item"`
	} `json:"coins"`
}

// GetTrendingCoins fetches the currently trending coins.
func (c *Client) GetTrendingCoins() ([]models.CoinSummary, error) {
	var result trendingResponse
	req := c.client.R().SetResult(&result)

	if _, err := c.doGet("/search/trending", req); err != nil {
		c.logger.Error("Failed to fetch trending coins", zap.Error(err))
		return nil, apperr.NewFetch("Failed to fetch trending coins", err)
	}

	coins := make([]models.CoinSummary, 0, len(result.Coins))
	for _, entry := range result.Coins {
		coins = append(coins, entry.Item)
	}

	return coins, nil
}
