package models

// CoinLinks is the descriptive link block of a coin detail record.
type CoinLinks struct {
	Homepage          []string `json:"homepage"`
	BlockchainSite    []string `json:"blockchain_site"`
	OfficialForumURL  []string `json:"official_forum_url"`
	TwitterScreenName string   `json:"twitter_screen_name"`
	SubredditURL      string   `json:"subreddit_url"`
	ReposURL          struct {
		Github    []string `json:"github"`
		Bitbucket []string `json:"bitbucket"`
	} `json:"repos_url"`
}

// CoinImage holds the three image sizes the upstream provides.
type CoinImage struct {
	Thumb string `json:"thumb"`
	Small string `json:"small"`
	Large string `json:"large"`
}

// CoinMarketData is the multi-currency breakdown of a coin detail record.
// Per-currency figures are keyed by lower-case currency code.
type CoinMarketData struct {
	CurrentPrice          map[string]float64 `json:"current_price"`
	ATH                   map[string]float64 `json:"ath"`
	ATHChangePercentage   map[string]float64 `json:"ath_change_percentage"`
	ATHDate               map[string]string  `json:"ath_date"`
	ATL                   map[string]float64 `json:"atl"`
	ATLChangePercentage   map[string]float64 `json:"atl_change_percentage"`
	ATLDate               map[string]string  `json:"atl_date"`
	MarketCap             map[string]float64 `json:"market_cap"`
	MarketCapRank         int                `json:"market_cap_rank"`
	FullyDilutedValuation map[string]float64 `json:"fully_diluted_valuation"`
	TotalVolume           map[string]float64 `json:"total_volume"`
	High24h               map[string]float64 `json:"high_24h"`
	Low24h                map[string]float64 `json:"low_24h"`

	PriceChange24h           float64 `json:"price_change_24h"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	PriceChangePercentage7d  float64 `json:"price_change_percentage_7d"`
	PriceChangePercentage30d float64 `json:"price_change_percentage_30d"`
	PriceChangePercentage1y  float64 `json:"price_change_percentage_1y"`

	PriceChangePercentage1hInCurrency  map[string]float64 `json:"price_change_percentage_1h_in_currency"`
	PriceChangePercentage24hInCurrency map[string]float64 `json:"price_change_percentage_24h_in_currency"`
	PriceChangePercentage7dInCurrency  map[string]float64 `json:"price_change_percentage_7d_in_currency"`

	TotalSupply       *float64 `json:"total_supply"`
	MaxSupply         *float64 `json:"max_supply"`
	CirculatingSupply float64  `json:"circulating_supply"`
	LastUpdated       string   `json:"last_updated"`
}

// CoinDetail is the full record returned by the coin detail endpoint.
type CoinDetail struct {
	ID                 string            `json:"id"`
	Symbol             string            `json:"symbol"`
	Name               string            `json:"name"`
	BlockTimeInMinutes float64           `json:"block_time_in_minutes"`
	HashingAlgorithm   string            `json:"hashing_algorithm"`
	Categories         []string          `json:"categories"`
	Description        map[string]string `json:"description"`
	Links              CoinLinks         `json:"links"`
	Image              CoinImage         `json:"image"`
	CountryOrigin      string            `json:"country_origin"`
	GenesisDate        string            `json:"genesis_date"`
	MarketCapRank      int               `json:"market_cap_rank"`
	MarketData         CoinMarketData    `json:"market_data"`
	LastUpdated        string            `json:"last_updated"`
	Platforms          map[string]string `json:"platforms,omitempty"`
}
