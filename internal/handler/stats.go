package handler

import (
	"net/http"

	"marketsim/internal/domain"
	"marketsim/internal/service"
)

// StatsHandler handles HTTP requests for run statistics.
type StatsHandler struct {
	statsSvc *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsSvc *service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// statsResponse is the JSON response for GET /stats.
type statsResponse struct {
	RunID          string   `json:"run_id"`
	Seed           int64    `json:"seed"`
	Steps          int      `json:"steps"`
	SimTime        float64  `json:"sim_time"`
	TotalTrades    int      `json:"total_trades"`
	TotalVolume    float64  `json:"total_volume"`
	AvgPrice       float64  `json:"avg_price"`
	Volatility     float64  `json:"volatility"`
	VWAP           *float64 `json:"vwap"`
	TradesInWindow int      `json:"trades_in_vwap_window"`
	PendingBuy     int      `json:"pending_buy_orders"`
	PendingSell    int      `json:"pending_sell_orders"`
	FinalPrice     float64  `json:"final_price"`
}

// Get handles GET /stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary := h.statsSvc.Summary()
	price := h.statsSvc.Price()

	resp := statsResponse{
		RunID:          summary.RunID,
		Seed:           summary.Seed,
		Steps:          summary.Steps,
		SimTime:        summary.SimTime,
		TotalTrades:    summary.TotalTrades,
		TotalVolume:    domain.CentsToDollars(summary.TotalVolume),
		AvgPrice:       domain.CentsToDollars(int64(summary.AvgPrice)),
		Volatility:     summary.Volatility,
		TradesInWindow: price.TradesInWindow,
		PendingBuy:     summary.PendingBuy,
		PendingSell:    summary.PendingSell,
		FinalPrice:     domain.CentsToDollars(summary.FinalPrice),
	}
	if price.VWAP != nil {
		v := domain.CentsToDollars(*price.VWAP)
		resp.VWAP = &v
	}
	WriteJSON(w, http.StatusOK, resp)
}
