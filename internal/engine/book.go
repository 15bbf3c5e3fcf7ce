package engine

import (
	"sync"

	"github.com/google/btree"

	"marketsim/internal/domain"
)

// priceLevel is a FIFO queue of resting orders sharing one price and
// side. An order's position in the queue is fixed at insertion; this is
// the time-priority guarantee.
type priceLevel struct {
	price  int64
	orders []*domain.Order
}

// bidLess orders the bid side by price descending, so Min() returns the
// best bid (highest price).
func bidLess(a, b *priceLevel) bool {
	return a.price > b.price
}

// askLess orders the ask side by price ascending, so Min() returns the
// best ask (lowest price).
func askLess(a, b *priceLevel) bool {
	return a.price < b.price
}

// DepthLevel is an aggregated view of one price level.
type DepthLevel struct {
	Price      int64
	Quantity   int64 // sum of remaining quantities
	OrderCount int
}

// OrderBook maintains the buy and sell sides as B-trees of price
// levels. All mutations (Submit, Match, CleanupFilledOrders,
// ExpireOlderThan) are mutually exclusive under one lock; depth queries
// take the read side and may run concurrently with each other.
type OrderBook struct {
	mu sync.RWMutex

	bids *btree.BTreeG[*priceLevel]
	asks *btree.BTreeG[*priceLevel]

	nextOrderID uint64
	nextTradeID uint64
}

// NewOrderBook creates an empty order book.
func NewOrderBook() *OrderBook {
	const degree = 32
	return &OrderBook{
		bids:        btree.NewG(degree, bidLess),
		asks:        btree.NewG(degree, askLess),
		nextOrderID: 1,
		nextTradeID: 1,
	}
}

// Submit assigns the next monotonic order ID and appends the order to
// the tail of its price level's queue, creating the level if absent.
// Level lookup is O(log L); the append is O(1) amortized.
func (b *OrderBook) Submit(order *domain.Order) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	order.ID = b.nextOrderID
	b.nextOrderID++
	order.Status = domain.OrderStatusPending
	order.FilledQuantity = 0

	tree := b.asks
	if order.Side == domain.SideBuy {
		tree = b.bids
	}

	key := &priceLevel{price: order.Price}
	level, ok := tree.Get(key)
	if !ok {
		level = &priceLevel{price: order.Price}
		tree.ReplaceOrInsert(level)
	}
	level.orders = append(level.orders, order)

	return order.ID
}

// BestBid returns the highest resting buy price, or 0 when the bid side
// is empty.
func (b *OrderBook) BestBid() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bestBidLocked()
}

// BestAsk returns the lowest resting sell price, or 0 when the ask side
// is empty.
func (b *OrderBook) BestAsk() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bestAskLocked()
}

func (b *OrderBook) bestBidLocked() int64 {
	if level, ok := b.bids.Min(); ok {
		return level.price
	}
	return 0
}

func (b *OrderBook) bestAskLocked() int64 {
	if level, ok := b.asks.Min(); ok {
		return level.price
	}
	return 0
}

// Spread returns bestAsk − bestBid, or 0 when either side is empty.
func (b *OrderBook) Spread() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bid := b.bestBidLocked()
	ask := b.bestAskLocked()
	if bid == 0 || ask == 0 {
		return 0
	}
	return ask - bid
}

// BuyDepth returns up to levels aggregated bid levels, best first.
func (b *OrderBook) BuyDepth(levels int) []DepthLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return depth(b.bids, levels)
}

// SellDepth returns up to levels aggregated ask levels, best first.
func (b *OrderBook) SellDepth(levels int) []DepthLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return depth(b.asks, levels)
}

func depth(tree *btree.BTreeG[*priceLevel], levels int) []DepthLevel {
	if levels <= 0 {
		return nil
	}
	out := make([]DepthLevel, 0, levels)
	tree.Ascend(func(level *priceLevel) bool {
		var qty int64
		count := 0
		for _, o := range level.orders {
			if o.IsOpen() {
				qty += o.Remaining()
				count++
			}
		}
		if count > 0 {
			out = append(out, DepthLevel{Price: level.price, Quantity: qty, OrderCount: count})
		}
		return len(out) < levels
	})
	return out
}

// BuyOrderCount returns the number of open resting buy orders.
func (b *OrderBook) BuyOrderCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return countOpen(b.bids)
}

// SellOrderCount returns the number of open resting sell orders.
func (b *OrderBook) SellOrderCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return countOpen(b.asks)
}

func countOpen(tree *btree.BTreeG[*priceLevel]) int {
	count := 0
	tree.Ascend(func(level *priceLevel) bool {
		for _, o := range level.orders {
			if o.IsOpen() {
				count++
			}
		}
		return true
	})
	return count
}

// CleanupFilledOrders sweeps every level removing filled and cancelled
// orders and collapsing empty levels. Idempotent: a second call with no
// intervening activity is a no-op.
func (b *OrderBook) CleanupFilledOrders() {
	b.mu.Lock()
	defer b.mu.Unlock()

	sweep(b.bids)
	sweep(b.asks)
}

func sweep(tree *btree.BTreeG[*priceLevel]) {
	var empty []*priceLevel
	tree.Ascend(func(level *priceLevel) bool {
		purgeClosed(level)
		if len(level.orders) == 0 {
			empty = append(empty, level)
		}
		return true
	})
	for _, level := range empty {
		tree.Delete(level)
	}
}

// purgeClosed removes non-open orders from a level queue in place,
// preserving the relative order of the survivors.
func purgeClosed(level *priceLevel) {
	kept := level.orders[:0]
	for _, o := range level.orders {
		if o.IsOpen() {
			kept = append(kept, o)
		}
	}
	for i := len(kept); i < len(level.orders); i++ {
		level.orders[i] = nil
	}
	level.orders = kept
}
