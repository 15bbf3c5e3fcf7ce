package engine

import (
	"testing"

	"pgregory.net/rapid"

	"marketsim/internal/domain"
)

// randomOrders generates a batch of valid limit orders around a narrow
// price band so crosses are likely.
func randomOrders(t *rapid.T) []*domain.Order {
	n := rapid.IntRange(1, 60).Draw(t, "n")
	orders := make([]*domain.Order, 0, n)
	for i := 0; i < n; i++ {
		side := domain.SideSell
		if rapid.Bool().Draw(t, "isBuy") {
			side = domain.SideBuy
		}
		orders = append(orders, &domain.Order{
			TraderID:  i,
			Side:      side,
			Price:     rapid.Int64Range(9500, 10500).Draw(t, "price"),
			Quantity:  rapid.Int64Range(1, 50).Draw(t, "qty"),
			Timestamp: float64(i),
		})
	}
	return orders
}

func TestProperty_MatchLeavesBookUncrossed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewOrderBook()
		for _, o := range randomOrders(t) {
			b.Submit(o)
			b.Match()

			bid, ask := b.BestBid(), b.BestAsk()
			if bid != 0 && ask != 0 && bid >= ask {
				t.Fatalf("book crossed after Match: bid=%d ask=%d", bid, ask)
			}
		}
	})
}

func TestProperty_Conservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewOrderBook()
		orders := randomOrders(t)
		for _, o := range orders {
			b.Submit(o)
		}
		trades := b.Match()

		// Per-order fills never exceed the order quantity, and the sum
		// of trade quantities attributed to an order equals its
		// filled_quantity.
		buyFills := make(map[uint64]int64)
		sellFills := make(map[uint64]int64)
		var buyTotal, sellTotal int64
		for _, tr := range trades {
			if tr.Quantity <= 0 || tr.Price <= 0 {
				t.Fatalf("degenerate trade: %+v", tr)
			}
			buyFills[tr.BuyOrderID] += tr.Quantity
			sellFills[tr.SellOrderID] += tr.Quantity
			buyTotal += tr.Quantity
			sellTotal += tr.Quantity
		}
		if buyTotal != sellTotal {
			t.Fatalf("buy-side fills %d != sell-side fills %d", buyTotal, sellTotal)
		}

		for _, o := range orders {
			var filled int64
			if o.Side == domain.SideBuy {
				filled = buyFills[o.ID]
			} else {
				filled = sellFills[o.ID]
			}
			if filled != o.FilledQuantity {
				t.Fatalf("order %d: trades sum to %d but filled_quantity is %d", o.ID, filled, o.FilledQuantity)
			}
			if o.FilledQuantity > o.Quantity {
				t.Fatalf("order %d overfilled: %d/%d", o.ID, o.FilledQuantity, o.Quantity)
			}
		}
	})
}

func TestProperty_PriceTimePriority(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		price := rapid.Int64Range(9000, 11000).Draw(t, "price")
		qtyEarly := rapid.Int64Range(1, 30).Draw(t, "qtyEarly")
		qtyLate := rapid.Int64Range(1, 30).Draw(t, "qtyLate")
		sellQty := rapid.Int64Range(1, qtyEarly+qtyLate).Draw(t, "sellQty")

		b := NewOrderBook()
		early := &domain.Order{TraderID: 1, Side: domain.SideBuy, Price: price, Quantity: qtyEarly, Timestamp: 0}
		late := &domain.Order{TraderID: 2, Side: domain.SideBuy, Price: price, Quantity: qtyLate, Timestamp: 1}
		b.Submit(early)
		b.Submit(late)
		b.Submit(&domain.Order{TraderID: 3, Side: domain.SideSell, Price: price, Quantity: sellQty, Timestamp: 2})

		b.Match()

		// The later order must not begin filling until the earlier one
		// is completely filled.
		if late.FilledQuantity > 0 && !early.IsFilled() {
			t.Fatalf("time priority violated: late filled %d while early at %d/%d",
				late.FilledQuantity, early.FilledQuantity, early.Quantity)
		}
	})
}

func TestProperty_TradesPrintAtSellPrice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewOrderBook()
		orders := randomOrders(t)
		byID := make(map[uint64]*domain.Order)
		for _, o := range orders {
			b.Submit(o)
			byID[o.ID] = o
		}
		for _, tr := range b.Match() {
			sell := byID[tr.SellOrderID]
			if tr.Price != sell.Price {
				t.Fatalf("trade %d priced at %d, want sell order price %d", tr.TradeID, tr.Price, sell.Price)
			}
			buy := byID[tr.BuyOrderID]
			if buy.Price < sell.Price {
				t.Fatalf("trade %d crossed incompatible prices: bid %d < ask %d", tr.TradeID, buy.Price, sell.Price)
			}
		}
	})
}

func TestProperty_CleanupIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewOrderBook()
		for _, o := range randomOrders(t) {
			b.Submit(o)
		}
		b.Match()

		b.CleanupFilledOrders()
		d1b, d1s := b.BuyDepth(100), b.SellDepth(100)
		b.CleanupFilledOrders()
		d2b, d2s := b.BuyDepth(100), b.SellDepth(100)

		if len(d1b) != len(d2b) || len(d1s) != len(d2s) {
			t.Fatalf("cleanup not idempotent: depth shape changed")
		}
		for i := range d1b {
			if d1b[i] != d2b[i] {
				t.Fatalf("bid depth changed at %d: %+v vs %+v", i, d1b[i], d2b[i])
			}
		}
		for i := range d1s {
			if d1s[i] != d2s[i] {
				t.Fatalf("ask depth changed at %d: %+v vs %+v", i, d1s[i], d2s[i])
			}
		}
	})
}
