package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"marketsim/internal/domain"
	"marketsim/internal/sim"
	"marketsim/internal/trader"
)

// TraderHandler handles HTTP requests for trader endpoints.
type TraderHandler struct {
	sim *sim.Simulation
}

// NewTraderHandler creates a new TraderHandler.
func NewTraderHandler(s *sim.Simulation) *TraderHandler {
	return &TraderHandler{sim: s}
}

// traderResponse is the JSON view of one trader's ledger.
type traderResponse struct {
	ID               int     `json:"id"`
	Strategy         string  `json:"strategy"`
	Cash             float64 `json:"cash"`
	Holdings         int64   `json:"holdings"`
	ReservedCash     float64 `json:"reserved_cash"`
	ReservedHoldings int64   `json:"reserved_holdings"`
	TradesExecuted   int     `json:"trades_executed"`
	RealizedProfit   float64 `json:"realized_profit"`
	NetWorth         float64 `json:"net_worth"`
	LastRSI          float64 `json:"last_rsi,omitempty"`
}

func toTraderResponse(s trader.Snapshot) traderResponse {
	return traderResponse{
		ID:               s.ID,
		Strategy:         s.Strategy,
		Cash:             domain.CentsToDollars(s.Cash),
		Holdings:         s.Holdings,
		ReservedCash:     domain.CentsToDollars(s.ReservedCash),
		ReservedHoldings: s.ReservedHoldings,
		TradesExecuted:   s.TradesExecuted,
		RealizedProfit:   domain.CentsToDollars(s.RealizedProfit),
		NetWorth:         domain.CentsToDollars(s.NetWorth),
		LastRSI:          s.LastRSI,
	}
}

// List handles GET /traders.
func (h *TraderHandler) List(w http.ResponseWriter, r *http.Request) {
	snaps := h.sim.TraderSnapshots()
	resp := make([]traderResponse, len(snaps))
	for i, s := range snaps {
		resp[i] = toTraderResponse(s)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /traders/{trader_id}.
func (h *TraderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "trader_id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "trader_id must be an integer")
		return
	}

	snap, err := h.sim.TraderSnapshot(id)
	if err != nil {
		if errors.Is(err, domain.ErrTraderNotFound) {
			WriteError(w, http.StatusNotFound, "trader_not_found", "no trader with that id")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal_error", "failed to load trader")
		return
	}
	WriteJSON(w, http.StatusOK, toTraderResponse(snap))
}
