package models

// Exchange is one row of the upstream exchanges listing, in trust-rank
// order. The trust score is a 0-10 upstream-supplied metric, never computed
// locally.
type Exchange struct {
	ID                          string  `json:"id"`
	Name                        string  `json:"name"`
	YearEstablished             *int    `json:"year_established"`
	Country                     *string `json:"country"`
	Description                 string  `json:"description"`
	URL                         string  `json:"url"`
	Image                       string  `json:"image"`
	HasTradingIncentive         bool    `json:"has_trading_incentive"`
	TrustScore                  int     `json:"trust_score"`
	TrustScoreRank              int     `json:"trust_score_rank"`
	TradeVolume24hBTC           float64 `json:"trade_volume_24h_btc"`
	TradeVolume24hBTCNormalized float64 `json:"trade_volume_24h_btc_normalized"`
}
