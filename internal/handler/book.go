package handler

import (
	"net/http"
	"strconv"

	"marketsim/internal/domain"
	"marketsim/internal/sim"
)

// BookHandler handles HTTP requests for order book endpoints.
type BookHandler struct {
	sim *sim.Simulation
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(s *sim.Simulation) *BookHandler {
	return &BookHandler{sim: s}
}

// depthLevelResponse is a single aggregated price level.
type depthLevelResponse struct {
	Price         float64 `json:"price"`
	TotalQuantity int64   `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
}

// depthResponse is the JSON response for GET /book/depth.
type depthResponse struct {
	Bids []depthLevelResponse `json:"bids"`
	Asks []depthLevelResponse `json:"asks"`
}

// spreadResponse is the JSON response for GET /book/spread.
// Bid, ask, and spread are null when the corresponding side is empty.
type spreadResponse struct {
	BestBid *float64 `json:"best_bid"`
	BestAsk *float64 `json:"best_ask"`
	Spread  *float64 `json:"spread"`
}

const defaultDepthLevels = 10

// GetDepth handles GET /book/depth?levels=N.
func (h *BookHandler) GetDepth(w http.ResponseWriter, r *http.Request) {
	levels := defaultDepthLevels
	if raw := r.URL.Query().Get("levels"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			WriteError(w, http.StatusBadRequest, "validation_error", "levels must be between 1 and 50")
			return
		}
		levels = n
	}

	depth := h.sim.BookDepth(levels)
	resp := depthResponse{
		Bids: make([]depthLevelResponse, len(depth.Bids)),
		Asks: make([]depthLevelResponse, len(depth.Asks)),
	}
	for i, lv := range depth.Bids {
		resp.Bids[i] = depthLevelResponse{
			Price:         domain.CentsToDollars(lv.Price),
			TotalQuantity: lv.Quantity,
			OrderCount:    lv.OrderCount,
		}
	}
	for i, lv := range depth.Asks {
		resp.Asks[i] = depthLevelResponse{
			Price:         domain.CentsToDollars(lv.Price),
			TotalQuantity: lv.Quantity,
			OrderCount:    lv.OrderCount,
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetSpread handles GET /book/spread.
func (h *BookHandler) GetSpread(w http.ResponseWriter, r *http.Request) {
	var resp spreadResponse
	if bid := h.sim.BestBid(); bid > 0 {
		v := domain.CentsToDollars(bid)
		resp.BestBid = &v
	}
	if ask := h.sim.BestAsk(); ask > 0 {
		v := domain.CentsToDollars(ask)
		resp.BestAsk = &v
	}
	if resp.BestBid != nil && resp.BestAsk != nil {
		v := domain.CentsToDollars(h.sim.Spread())
		resp.Spread = &v
	}
	WriteJSON(w, http.StatusOK, resp)
}
