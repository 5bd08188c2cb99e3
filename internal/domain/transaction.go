package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the receipt of one executed order. Never mutated.
// Seq restarts at 1 for every ledger; RunID tells ledgers apart.
type Transaction struct {
	ID         string          `json:"id"`
	RunID      string          `json:"run_id"`
	Seq        uint64          `json:"seq"`
	WalletID   string          `json:"wallet_id"`
	OrderID    string          `json:"order_id"`
	Side       Side            `json:"side"`
	Amount     decimal.Decimal `json:"amount"`
	Price      decimal.Decimal `json:"price"`
	TotalValue decimal.Decimal `json:"total_value"`
	Timestamp  time.Time       `json:"timestamp"`
}
