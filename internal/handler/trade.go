package handler

import (
	"net/http"
	"strconv"

	"marketsim/internal/domain"
	"marketsim/internal/sim"
)

// TradeHandler handles HTTP requests for executed trade endpoints.
type TradeHandler struct {
	sim *sim.Simulation
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(s *sim.Simulation) *TradeHandler {
	return &TradeHandler{sim: s}
}

// tradeResponse is the JSON view of one executed trade.
type tradeResponse struct {
	TradeID     uint64  `json:"trade_id"`
	BuyOrderID  uint64  `json:"buy_order_id"`
	SellOrderID uint64  `json:"sell_order_id"`
	BuyerID     int     `json:"buyer_id"`
	SellerID    int     `json:"seller_id"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	Timestamp   float64 `json:"timestamp"`
}

// tradesResponse is the JSON response for GET /trades.
type tradesResponse struct {
	Count  int             `json:"count"`
	Trades []tradeResponse `json:"trades"`
}

// List handles GET /trades?since=ID, returning trades with IDs strictly
// greater than since, in execution order.
func (h *TradeHandler) List(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "since must be a non-negative integer")
			return
		}
		since = n
	}

	trades := h.sim.Trades(since)
	resp := tradesResponse{
		Count:  len(trades),
		Trades: make([]tradeResponse, len(trades)),
	}
	for i, t := range trades {
		resp.Trades[i] = tradeResponse{
			TradeID:     t.TradeID,
			BuyOrderID:  t.BuyOrderID,
			SellOrderID: t.SellOrderID,
			BuyerID:     t.BuyerID,
			SellerID:    t.SellerID,
			Price:       domain.CentsToDollars(t.Price),
			Quantity:    t.Quantity,
			Timestamp:   t.Timestamp,
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}
