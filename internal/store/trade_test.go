package store

import (
	"sync"
	"testing"

	"marketsim/internal/domain"
)

func TestTradeLog_AppendAndAll(t *testing.T) {
	l := NewTradeLog()
	if l.Len() != 0 {
		t.Fatalf("new log has %d trades", l.Len())
	}

	l.Append(
		domain.ExecutedTrade{TradeID: 1, Price: 10000, Quantity: 5},
		domain.ExecutedTrade{TradeID: 2, Price: 10100, Quantity: 3},
	)
	l.Append(domain.ExecutedTrade{TradeID: 3, Price: 9900, Quantity: 1})

	all := l.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(all))
	}
	for i, tr := range all {
		if tr.TradeID != uint64(i+1) {
			t.Errorf("trade %d has id %d, want %d", i, tr.TradeID, i+1)
		}
	}
}

func TestTradeLog_AllReturnsCopy(t *testing.T) {
	l := NewTradeLog()
	l.Append(domain.ExecutedTrade{TradeID: 1, Price: 10000, Quantity: 5})

	all := l.All()
	all[0].Price = 1
	if l.All()[0].Price != 10000 {
		t.Error("mutating the returned slice reached the log")
	}
}

func TestTradeLog_Since(t *testing.T) {
	l := NewTradeLog()
	for i := uint64(1); i <= 5; i++ {
		l.Append(domain.ExecutedTrade{TradeID: i, Price: 10000, Quantity: 1})
	}

	since := l.Since(3)
	if len(since) != 2 {
		t.Fatalf("Since(3) returned %d trades, want 2", len(since))
	}
	if since[0].TradeID != 4 || since[1].TradeID != 5 {
		t.Errorf("Since(3) ids = %d,%d, want 4,5", since[0].TradeID, since[1].TradeID)
	}

	if got := len(l.Since(0)); got != 5 {
		t.Errorf("Since(0) returned %d trades, want all 5", got)
	}
	if got := len(l.Since(99)); got != 0 {
		t.Errorf("Since(99) returned %d trades, want 0", got)
	}
}

func TestTradeLog_TotalVolume(t *testing.T) {
	l := NewTradeLog()
	l.Append(
		domain.ExecutedTrade{TradeID: 1, Price: 10000, Quantity: 5}, // 50000
		domain.ExecutedTrade{TradeID: 2, Price: 200, Quantity: 3},   // 600
	)
	if got := l.TotalVolume(); got != 50600 {
		t.Errorf("TotalVolume() = %d, want 50600", got)
	}
}

func TestTradeLog_ConcurrentReaders(t *testing.T) {
	l := NewTradeLog()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(base uint64) {
			defer wg.Done()
			for i := uint64(0); i < 100; i++ {
				l.Append(domain.ExecutedTrade{TradeID: base*100 + i, Price: 100, Quantity: 1})
				l.All()
				l.Len()
			}
		}(uint64(w))
	}
	wg.Wait()
	if got := l.Len(); got != 400 {
		t.Errorf("Len() = %d after concurrent appends, want 400", got)
	}
}
