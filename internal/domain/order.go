package domain

// Side indicates whether an order buys or sells the asset.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderStatus represents the lifecycle state of an order.
//
// Transitions only move forward: pending → partially_filled → filled.
// cancelled is reachable from pending or partially_filled when a resting
// order expires; no transition leaves a terminal state.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// Order is a limit order submitted to (or resting on) the book.
//
// Price and Quantity are immutable after creation. FilledQuantity and
// Status are mutated only by the matching engine, under the book lock.
type Order struct {
	ID             uint64 // assigned by the book, monotonic per book
	TraderID       int
	Side           Side
	Price          int64 // cents
	Quantity       int64
	FilledQuantity int64
	Status         OrderStatus
	Timestamp      float64 // simulation time at submission
}

// Remaining returns the unfilled quantity.
func (o *Order) Remaining() int64 {
	return o.Quantity - o.FilledQuantity
}

// IsFilled reports whether the order is completely filled.
func (o *Order) IsFilled() bool {
	return o.FilledQuantity >= o.Quantity
}

// IsOpen reports whether the order can still participate in matching.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPartiallyFilled
}

// Validate checks the immutable fields of a newly created order.
func (o *Order) Validate() error {
	if o.Side != SideBuy && o.Side != SideSell {
		return ErrInvalidOrder
	}
	if o.Price <= 0 || o.Quantity <= 0 {
		return ErrInvalidOrder
	}
	return nil
}
