package sim

import (
	"marketsim/internal/domain"
	"marketsim/internal/engine"
	"marketsim/internal/indicator"
	"marketsim/internal/trader"
)

// SummaryStats is the end-of-run summary for one simulation.
type SummaryStats struct {
	RunID       string  `json:"run_id"`
	Seed        int64   `json:"seed"`
	Steps       int     `json:"steps"`
	SimTime     float64 `json:"sim_time"`
	TotalTrades int     `json:"total_trades"`
	TotalVolume int64   `json:"total_volume"`
	AvgPrice    float64 `json:"avg_price"`
	Volatility  float64 `json:"volatility"`
	PendingBuy  int     `json:"pending_buy_orders"`
	PendingSell int     `json:"pending_sell_orders"`
	BestBid     int64   `json:"best_bid"`
	BestAsk     int64   `json:"best_ask"`
	Spread      int64   `json:"spread"`
	FinalPrice  int64   `json:"final_price"`
}

// Stats computes the current summary without advancing time.
func (s *Simulation) Stats() SummaryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// With no trades the average falls back to the market price.
	trades := s.trades.All()
	avgPrice := float64(s.market.CurrentPrice())
	if len(trades) > 0 {
		var sum int64
		for _, tr := range trades {
			sum += tr.Price
		}
		avgPrice = float64(sum) / float64(len(trades))
	}

	return SummaryStats{
		RunID:       s.runID,
		Seed:        s.cfg.Simulation.Seed,
		Steps:       s.stepCount,
		SimTime:     s.currentTime,
		TotalTrades: len(trades),
		TotalVolume: s.trades.TotalVolume(),
		AvgPrice:    avgPrice,
		Volatility:  indicator.StdDev(s.market.History()),
		PendingBuy:  s.book.BuyOrderCount(),
		PendingSell: s.book.SellOrderCount(),
		BestBid:     s.book.BestBid(),
		BestAsk:     s.book.BestAsk(),
		Spread:      s.book.Spread(),
		FinalPrice:  s.market.CurrentPrice(),
	}
}

// RunID identifies this simulation instance.
func (s *Simulation) RunID() string {
	return s.runID
}

// CurrentPrice returns the market price as of the last completed step.
func (s *Simulation) CurrentPrice() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.market.CurrentPrice()
}

// PriceHistory returns the most recent n history samples, oldest first.
// n <= 0 returns the full retained history.
func (s *Simulation) PriceHistory(n int) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 {
		return s.market.History()
	}
	return s.market.Recent(n)
}

// Depth is a two-sided order book view.
type Depth struct {
	Bids []engine.DepthLevel `json:"bids"`
	Asks []engine.DepthLevel `json:"asks"`
}

// BookDepth returns up to levels price levels per side.
func (s *Simulation) BookDepth(levels int) Depth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Depth{
		Bids: s.book.BuyDepth(levels),
		Asks: s.book.SellDepth(levels),
	}
}

// BestBid returns the highest resting bid price, 0 when the side is empty.
func (s *Simulation) BestBid() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book.BestBid()
}

// BestAsk returns the lowest resting ask price, 0 when the side is empty.
func (s *Simulation) BestAsk() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book.BestAsk()
}

// Spread returns ask minus bid, 0 when either side is empty.
func (s *Simulation) Spread() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book.Spread()
}

// TraderSnapshots reports every trader's ledger valued at the current price.
func (s *Simulation) TraderSnapshots() []trader.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	price := s.market.CurrentPrice()
	out := make([]trader.Snapshot, len(s.traders))
	for i, t := range s.traders {
		out[i] = t.Snapshot(price)
	}
	return out
}

// TraderSnapshot reports one trader's ledger valued at the current price.
func (s *Simulation) TraderSnapshot(traderID int) (trader.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if traderID < 0 || traderID >= len(s.traders) {
		return trader.Snapshot{}, domain.ErrTraderNotFound
	}
	return s.traders[traderID].Snapshot(s.market.CurrentPrice()), nil
}

// Trades returns executed trades with IDs greater than sinceID,
// in execution order. sinceID 0 returns everything.
func (s *Simulation) Trades(sinceID uint64) []domain.ExecutedTrade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sinceID == 0 {
		return s.trades.All()
	}
	return s.trades.Since(sinceID)
}
