package store

import (
	"sync"

	"marketsim/internal/domain"
)

// TradeLog is a thread-safe, append-only record of executed trades in
// execution order. Trades are immutable, so the log hands out copies of
// its backing slice rather than locking readers against the step loop.
type TradeLog struct {
	mu     sync.RWMutex
	trades []domain.ExecutedTrade
}

// NewTradeLog creates an empty TradeLog.
func NewTradeLog() *TradeLog {
	return &TradeLog{}
}

// Append adds trades to the log in order.
func (l *TradeLog) Append(trades ...domain.ExecutedTrade) {
	if len(trades) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades = append(l.trades, trades...)
}

// All returns a copy of every trade in execution order.
func (l *TradeLog) All() []domain.ExecutedTrade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.ExecutedTrade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Since returns a copy of all trades with TradeID greater than id.
func (l *TradeLog) Since(id uint64) []domain.ExecutedTrade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	// Trade IDs are monotonic in execution order, so scan backwards.
	i := len(l.trades)
	for i > 0 && l.trades[i-1].TradeID > id {
		i--
	}
	out := make([]domain.ExecutedTrade, len(l.trades)-i)
	copy(out, l.trades[i:])
	return out
}

// Len returns the number of trades recorded.
func (l *TradeLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}

// TotalVolume returns the summed notional value of all trades in cents.
func (l *TradeLog) TotalVolume() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total int64
	for _, t := range l.trades {
		total += t.Notional()
	}
	return total
}
