package domain

import "errors"

var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidState is returned when an order is not in the status the
	// requested transition starts from.
	ErrInvalidState  = errors.New("invalid order state")
	ErrInvalidAmount = errors.New("amount and price must be > 0")
	ErrInvalidSide   = errors.New("invalid side")
)
