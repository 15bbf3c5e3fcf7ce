package domain

// ExecutedTrade records a matched execution between a buy and a sell order.
// Trades are immutable once created; they carry copies of the order fields
// they reference so they stay valid after the orders are swept from the book.
type ExecutedTrade struct {
	TradeID     uint64 // monotonic, process-unique per book
	BuyOrderID  uint64
	SellOrderID uint64
	BuyerID     int
	SellerID    int
	Price       int64 // cents
	Quantity    int64
	Timestamp   float64
}

// Notional returns the trade's cash value in cents.
func (t ExecutedTrade) Notional() int64 {
	return t.Price * t.Quantity
}
