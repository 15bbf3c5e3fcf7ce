package service

import (
	"marketsim/internal/indicator"
	"marketsim/internal/sim"
)

// PriceStats is the VWAP view over a recent window of simulation time.
type PriceStats struct {
	VWAP           *int64   // nil when no trades ever
	Window         float64  // window length in simulation seconds
	TradesInWindow int
	LastTradeAt    *float64 // nil when no trades ever
}

// StatsService answers read-only statistics queries against a running
// simulation. It never mutates simulation state.
type StatsService struct {
	sim        *sim.Simulation
	vwapWindow float64
}

// NewStatsService creates a StatsService. vwapWindow is in simulation
// seconds.
func NewStatsService(s *sim.Simulation, vwapWindow float64) *StatsService {
	return &StatsService{
		sim:        s,
		vwapWindow: vwapWindow,
	}
}

// Price returns the VWAP over the configured window, measured backwards
// from the latest trade. Falls back to the last trade's price when the
// window is empty; VWAP is nil when no trades have ever executed.
func (s *StatsService) Price() PriceStats {
	resp := PriceStats{Window: s.vwapWindow}

	trades := s.sim.Trades(0)
	if len(trades) == 0 {
		return resp
	}

	last := trades[len(trades)-1]
	resp.LastTradeAt = &last.Timestamp
	windowStart := last.Timestamp - s.vwapWindow

	var sumPriceQty, sumQty int64
	for i := len(trades) - 1; i >= 0; i-- {
		t := trades[i]
		if t.Timestamp < windowStart {
			break
		}
		sumPriceQty += t.Price * t.Quantity
		sumQty += t.Quantity
		resp.TradesInWindow++
	}

	if sumQty > 0 {
		vwap := sumPriceQty / sumQty
		resp.VWAP = &vwap
	} else {
		resp.VWAP = &last.Price
	}

	return resp
}

// Volatility returns the standard deviation of the retained price
// history in cents.
func (s *StatsService) Volatility() float64 {
	return indicator.StdDev(s.sim.PriceHistory(0))
}

// Volume returns the summed notional value of all trades in cents.
func (s *StatsService) Volume() int64 {
	var total int64
	for _, t := range s.sim.Trades(0) {
		total += t.Notional()
	}
	return total
}

// TradeCount returns the number of trades executed so far.
func (s *StatsService) TradeCount() int {
	return len(s.sim.Trades(0))
}

// Summary returns the full run summary.
func (s *StatsService) Summary() sim.SummaryStats {
	return s.sim.Stats()
}
