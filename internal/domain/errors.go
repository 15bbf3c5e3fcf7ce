package domain

import "errors"

// Sentinel errors for domain-level error handling. Callers match with
// errors.Is; the handler layer maps these to HTTP status codes.
var (
	ErrInsufficientHistory  = errors.New("insufficient_history")
	ErrInvalidOrder         = errors.New("invalid_order")
	ErrTraderNotFound       = errors.New("trader_not_found")
	ErrInsufficientBalance  = errors.New("insufficient_balance")
	ErrInsufficientHoldings = errors.New("insufficient_holdings")
)
