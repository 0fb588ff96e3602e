package models

// ROI is the return-on-investment block some coins carry.
type ROI struct {
	Times      float64 `json:"times"`
	Currency   string  `json:"currency"`
	Percentage float64 `json:"percentage"`
}

// Sparkline holds the 7-day price samples returned when sparkline data is
// requested.
type Sparkline struct {
	Price []float64 `json:"price"`
}

// CoinMarket is one row of the upstream markets listing. It is an immutable
// snapshot: a new fetch replaces the previous value wholesale, nothing is
// merged.
type CoinMarket struct {
	ID                           string   `json:"id"`
	Symbol                       string   `json:"symbol"`
	Name                         string   `json:"name"`
	Image                        string   `json:"image"`
	CurrentPrice                 float64  `json:"current_price"`
	MarketCap                    float64  `json:"market_cap"`
	MarketCapRank                int      `json:"market_cap_rank"`
	FullyDilutedValuation        *float64 `json:"fully_diluted_valuation"`
	TotalVolume                  float64  `json:"total_volume"`
	High24h                      float64  `json:"high_24h"`
	Low24h                       float64  `json:"low_24h"`
	PriceChange24h               float64  `json:"price_change_24h"`
	PriceChangePercentage24h     float64  `json:"price_change_percentage_24h"`
	MarketCapChange24h           float64  `json:"market_cap_change_24h"`
	MarketCapChangePercentage24h float64  `json:"market_cap_change_percentage_24h"`
	CirculatingSupply            float64  `json:"circulating_supply"`
	TotalSupply                  *float64 `json:"total_supply"`
	MaxSupply                    *float64 `json:"max_supply"`
	ATH                          float64  `json:"ath"`
	ATHChangePercentage          float64  `json:"ath_change_percentage"`
	ATHDate                      string   `json:"ath_date"`
	ATL                          float64  `json:"atl"`
	ATLChangePercentage          float64  `json:"atl_change_percentage"`
	ATLDate                      string   `json:"atl_date"`
	ROI                          *ROI     `json:"roi"`
	LastUpdated                  string   `json:"last_updated"`

	// Per-currency change windows, present only for the windows named in the
	// request's price_change_percentage spec.
	PriceChangePercentage1hInCurrency  map[string]float64 `json:"price_change_percentage_1h_in_currency,omitempty"`
	PriceChangePercentage24hInCurrency map[string]float64 `json:"price_change_percentage_24h_in_currency,omitempty"`
	PriceChangePercentage7dInCurrency  map[string]float64 `json:"price_change_percentage_7d_in_currency,omitempty"`
	PriceChangePercentage30dInCurrency map[string]float64 `json:"price_change_percentage_30d_in_currency,omitempty"`

	SparklineIn7d *Sparkline `json:"sparkline_in_7d,omitempty"`
}

// CoinSummary is the lightweight record returned by search and trending.
type CoinSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Thumb         string `json:"thumb"`
	MarketCapRank int    `json:"market_cap_rank"`
}

// ChartPoint is one sample of a coin's market chart. MarketCap and
// TotalVolume are nil when the upstream arrays are shorter than the price
// array at that index.
type ChartPoint struct {
	Timestamp   int64    `json:"timestamp"`
	Price       float64  `json:"price"`
	MarketCap   *float64 `json:"market_cap,omitempty"`
	TotalVolume *float64 `json:"total_volume,omitempty"`
}
