package models

import "time"

// Holding is one position inside a portfolio. Value and profit/loss are
// derived from amount, average cost and current price, never stored
// authoritative.
type Holding struct {
	CoinID               string  `json:"coin_id"`
	Symbol               string  `json:"symbol"`
	Name                 string  `json:"name"`
	Amount               float64 `json:"amount"`
	AverageCost          float64 `json:"average_cost"`
	CurrentPrice         float64 `json:"current_price"`
	Value                float64 `json:"value"`
	ProfitLoss           float64 `json:"profit_loss"`
	ProfitLossPercentage float64 `json:"profit_loss_percentage"`
}

// Portfolio is a named, ordered list of holdings with derived aggregates.
type Portfolio struct {
	ID                       string    `json:"id"`
	Name                     string    `json:"name"`
	Holdings                 []Holding `json:"holdings"`
	TotalValue               float64   `json:"total_value"`
	TotalChange24h           float64   `json:"total_change_24h"`
	TotalChangePercentage24h float64   `json:"total_change_percentage_24h"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// Recalculate rederives every holding's value and profit/loss plus the
// portfolio aggregates. change24h maps coin id to its 24h price change
// percentage in the display currency; coins missing from the map contribute
// no 24h movement.
func (p *Portfolio) Recalculate(change24h map[string]float64) {
	var totalNow, totalPrev float64

	for i := range p.Holdings {
		h := &p.Holdings[i]
		h.Value = h.Amount * h.CurrentPrice
		h.ProfitLoss = (h.CurrentPrice - h.AverageCost) * h.Amount
		if h.AverageCost > 0 {
			h.ProfitLossPercentage = (h.CurrentPrice - h.AverageCost) / h.AverageCost * 100
		} else {
			h.ProfitLossPercentage = 0
		}

		totalNow += h.Value

		pct := change24h[h.CoinID]
		if pct > -100 {
			totalPrev += h.Value / (1 + pct/100)
		}
	}

	p.TotalValue = totalNow
	p.TotalChange24h = totalNow - totalPrev
	if totalPrev > 0 {
		p.TotalChangePercentage24h = (totalNow - totalPrev) / totalPrev * 100
	} else {
		p.TotalChangePercentage24h = 0
	}
}
