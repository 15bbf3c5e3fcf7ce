package handler

import (
	"net/http"
	"strconv"

	"marketsim/internal/domain"
	"marketsim/internal/sim"
)

// MarketHandler handles HTTP requests for market price endpoints.
type MarketHandler struct {
	sim *sim.Simulation
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(s *sim.Simulation) *MarketHandler {
	return &MarketHandler{sim: s}
}

// priceResponse is the JSON response for GET /market/price.
type priceResponse struct {
	Price      float64 `json:"price"`
	PriceCents int64   `json:"price_cents"`
}

// historyResponse is the JSON response for GET /market/history.
type historyResponse struct {
	Points int       `json:"points"`
	Prices []float64 `json:"prices"`
}

// GetPrice handles GET /market/price.
func (h *MarketHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	price := h.sim.CurrentPrice()
	WriteJSON(w, http.StatusOK, priceResponse{
		Price:      domain.CentsToDollars(price),
		PriceCents: price,
	})
}

// GetHistory handles GET /market/history?points=N. points defaults to
// the full retained history.
func (h *MarketHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	points := 0
	if raw := r.URL.Query().Get("points"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, http.StatusBadRequest, "validation_error", "points must be a positive integer")
			return
		}
		points = n
	}

	history := h.sim.PriceHistory(points)
	prices := make([]float64, len(history))
	for i, p := range history {
		prices[i] = domain.CentsToDollars(p)
	}
	WriteJSON(w, http.StatusOK, historyResponse{
		Points: len(prices),
		Prices: prices,
	})
}
