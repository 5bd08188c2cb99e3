package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is a point-in-time view of a wallet valued at the market price.
type Balance struct {
	WalletID   string          `json:"wallet_id"`
	Quote      decimal.Decimal `json:"quote"`
	Base       decimal.Decimal `json:"base"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type MarketSummary struct {
	Price        decimal.Decimal `json:"price"`
	TotalOrders  int             `json:"total_orders"`
	FilledOrders int             `json:"filled_orders"`
	Timestamp    time.Time       `json:"timestamp"`
}
