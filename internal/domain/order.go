package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string
type OrderStatus string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"

	Pending   OrderStatus = "PENDING"
	Filled    OrderStatus = "FILLED"
	Cancelled OrderStatus = "CANCELLED"
	// Partial is never reached: orders fill in full or not at all.
	Partial OrderStatus = "PARTIAL"
)

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == Filled || s == Cancelled
}

// Order is a request to convert between the two balances of a wallet.
// Only Status and FilledAt change after creation.
type Order struct {
	ID        string          `json:"id"`
	WalletID  string          `json:"wallet_id"`
	Side      Side            `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	FilledAt  *time.Time      `json:"filled_at,omitempty"`
}

// Total is amount*price in quote currency.
func (o *Order) Total() decimal.Decimal {
	return o.Amount.Mul(o.Price)
}

// Clone returns a copy that shares no pointers with o.
func (o *Order) Clone() *Order {
	cpy := *o
	if o.FilledAt != nil {
		t := *o.FilledAt
		cpy.FilledAt = &t
	}
	return &cpy
}
