package engine

import (
	"github.com/google/btree"

	"marketsim/internal/domain"
)

// ExpireOlderThan cancels every open resting order submitted at or
// before cutoff and returns the cancelled orders so the caller can
// release the ledger reservations backing them. Cancelled orders stay
// in their queues until the next cleanup sweep; matching skips them.
func (b *OrderBook) ExpireOlderThan(cutoff float64) []*domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	var expired []*domain.Order
	expired = expireTree(b.bids, cutoff, expired)
	expired = expireTree(b.asks, cutoff, expired)
	return expired
}

func expireTree(tree *btree.BTreeG[*priceLevel], cutoff float64, expired []*domain.Order) []*domain.Order {
	tree.Ascend(func(level *priceLevel) bool {
		for _, o := range level.orders {
			if o.IsOpen() && o.Timestamp <= cutoff {
				o.Status = domain.OrderStatusCancelled
				expired = append(expired, o)
			}
		}
		return true
	})
	return expired
}
