package engine

import (
	"fmt"

	"marketsim/internal/domain"
)

// Match runs price-time-priority matching against all resting orders
// and returns the trades it produced, in execution order.
//
// The loop repeatedly pairs the best bid level with the best ask level.
// It stops when either side is empty or bestBid < bestAsk, which is the
// book's crossed-free postcondition. Within a level pair, orders fill
// in queue order (earliest submission first) and each fill takes
// min(remaining, remaining) at the sell order's price.
//
// Matching across levels is inherently sequential: removing an
// exhausted level changes which pair is inspected next, and later fills
// within a pair depend on earlier fills' remaining quantities. The
// whole pass therefore runs in one critical section; the parallelism in
// this system lives in the decide phase, not here.
func (b *OrderBook) Match() []domain.ExecutedTrade {
	b.mu.Lock()
	defer b.mu.Unlock()

	var trades []domain.ExecutedTrade

	for {
		bidLevel, hasBid := b.bids.Min()
		askLevel, hasAsk := b.asks.Min()
		if !hasBid || !hasAsk {
			break
		}
		if bidLevel.price < askLevel.price {
			break
		}

		trades = b.fillLevels(bidLevel, askLevel, trades)

		// Drop closed orders; a level is removed the instant its queue
		// becomes empty.
		purgeClosed(bidLevel)
		purgeClosed(askLevel)
		if len(bidLevel.orders) == 0 {
			b.bids.Delete(bidLevel)
		}
		if len(askLevel.orders) == 0 {
			b.asks.Delete(askLevel)
		}
	}

	return trades
}

// fillLevels crosses two price levels in queue order until one side has
// no open quantity left.
func (b *OrderBook) fillLevels(bidLevel, askLevel *priceLevel, trades []domain.ExecutedTrade) []domain.ExecutedTrade {
	bi, si := 0, 0
	for bi < len(bidLevel.orders) && si < len(askLevel.orders) {
		buy := bidLevel.orders[bi]
		if !buy.IsOpen() || buy.Remaining() == 0 {
			bi++
			continue
		}
		sell := askLevel.orders[si]
		if !sell.IsOpen() || sell.Remaining() == 0 {
			si++
			continue
		}

		fillQty := buy.Remaining()
		if sell.Remaining() < fillQty {
			fillQty = sell.Remaining()
		}
		// Both orders are open with positive remaining quantity, so a
		// non-positive fill here is a matching-loop bug that would
		// corrupt every downstream statistic.
		if fillQty <= 0 {
			panic(fmt.Sprintf("engine: non-positive fill %d for buy %d / sell %d", fillQty, buy.ID, sell.ID))
		}

		trade := domain.ExecutedTrade{
			TradeID:     b.nextTradeID,
			BuyOrderID:  buy.ID,
			SellOrderID: sell.ID,
			BuyerID:     buy.TraderID,
			SellerID:    sell.TraderID,
			Price:       sell.Price,
			Quantity:    fillQty,
			Timestamp:   buy.Timestamp,
		}
		b.nextTradeID++

		applyFill(buy, fillQty)
		applyFill(sell, fillQty)

		trades = append(trades, trade)
	}
	return trades
}

// applyFill advances an order's fill state per the status machine:
// pending → partially_filled → filled, never backward.
func applyFill(o *domain.Order, qty int64) {
	o.FilledQuantity += qty
	if o.FilledQuantity > o.Quantity {
		panic(fmt.Sprintf("engine: order %d overfilled (%d/%d)", o.ID, o.FilledQuantity, o.Quantity))
	}
	if o.IsFilled() {
		o.Status = domain.OrderStatusFilled
	} else {
		o.Status = domain.OrderStatusPartiallyFilled
	}
}
