package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"crypto-tracker-go/internal/apperr"
	"crypto-tracker-go/internal/coingecko"
	"crypto-tracker-go/internal/models"
	"go.uber.org/zap"
)

// MarketSource is the caching layer the handlers read through; they never
// call the gateway directly.
type MarketSource interface {
	Coins(opts coingecko.MarketsOptions) ([]models.CoinMarket, error)
	CoinDetail(id string) (*models.CoinDetail, error)
	Exchanges() ([]models.Exchange, error)
	Global() (*models.GlobalMarket, error)
}

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log    *zap.Logger
	market MarketSource
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, market MarketSource) *APIHandler {
	return &APIHandler{log: log, market: market}
}

// errorResponse is the uniform JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeFetchError maps err to a 500 envelope carrying the fetch error's
// message, or a fallback when the error is of another kind.
func writeFetchError(w http.ResponseWriter, err error, fallback string) {
	message := fallback
	var fe *apperr.FetchError
	if errors.As(err, &fe) {
		message = fe.Message
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: message})
}

// CoinsHandler serves the markets listing. Unset query parameters fall back
// to the documented defaults.
func (h *APIHandler) CoinsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := coingecko.MarketsOptions{
		VsCurrency:            q.Get("vs_currency"),
		Order:                 q.Get("order"),
		Sparkline:             q.Get("sparkline") == "true",
		PriceChangePercentage: q.Get("price_change_percentage"),
	}
	if perPage, err := strconv.Atoi(q.Get("per_page")); err == nil {
		opts.PerPage = perPage
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		opts.Page = page
	}

	coins, err := h.market.Coins(opts)
	if err != nil {
		h.log.Error("Failed to serve coins", zap.Error(err))
		writeFetchError(w, err, "Failed to fetch coins data")
		return
	}

	writeJSON(w, http.StatusOK, coins)
}

// CoinDetailHandler serves the detail record of one coin. A missing id path
// parameter is a validation failure and produces a 400.
func (h *APIHandler) CoinDetailHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/coins/")
	if id == "" {
		verr := apperr.NewValidation("Coin ID is required")
		h.log.Warn("Rejected coin detail request", zap.Error(verr))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message})
		return
	}

	detail, err := h.market.CoinDetail(id)
	if err != nil {
		h.log.Error("Failed to serve coin details", zap.String("id", id), zap.Error(err))
		writeFetchError(w, err, "Failed to fetch details for "+id)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// ExchangesHandler serves the exchanges listing in trust-rank order.
func (h *APIHandler) ExchangesHandler(w http.ResponseWriter, r *http.Request) {
	exchanges, err := h.market.Exchanges()
	if err != nil {
		h.log.Error("Failed to serve exchanges", zap.Error(err))
		writeFetchError(w, err, "Failed to fetch exchanges data")
		return
	}

	writeJSON(w, http.StatusOK, exchanges)
}

// MarketHandler serves the global market snapshot.
func (h *APIHandler) MarketHandler(w http.ResponseWriter, r *http.Request) {
	global, err := h.market.Global()
	if err != nil {
		h.log.Error("Failed to serve global market data", zap.Error(err))
		writeFetchError(w, err, "Failed to fetch global market data")
		return
	}

	writeJSON(w, http.StatusOK, global)
}
