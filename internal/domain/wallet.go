package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a quote currency balance and a base asset balance.
// Both balances are never negative.
type Wallet struct {
	ID           string          `json:"id"`
	QuoteBalance decimal.Decimal `json:"quote_balance"`
	BaseBalance  decimal.Decimal `json:"base_balance"`
	CreatedAt    time.Time       `json:"created_at"`
}

func NewWallet(id string, seed decimal.Decimal, now time.Time) *Wallet {
	return &Wallet{
		ID:           id,
		QuoteBalance: seed,
		BaseBalance:  decimal.Zero,
		CreatedAt:    now,
	}
}

func (w *Wallet) CanAffordBuy(amount, price decimal.Decimal) bool {
	return w.QuoteBalance.GreaterThanOrEqual(amount.Mul(price))
}

func (w *Wallet) CanAffordSell(amount decimal.Decimal) bool {
	return w.BaseBalance.GreaterThanOrEqual(amount)
}

// Buy debits amount*price of quote and credits amount of base.
// On failure the wallet is left untouched.
func (w *Wallet) Buy(amount, price decimal.Decimal) error {
	cost := amount.Mul(price)
	if !w.CanAffordBuy(amount, price) {
		return fmt.Errorf("%w: buy needs %s quote, wallet has %s", ErrInsufficientFunds, cost, w.QuoteBalance)
	}
	w.QuoteBalance = w.QuoteBalance.Sub(cost)
	w.BaseBalance = w.BaseBalance.Add(amount)
	return nil
}

// Sell debits amount of base and credits amount*price of quote.
func (w *Wallet) Sell(amount, price decimal.Decimal) error {
	if !w.CanAffordSell(amount) {
		return fmt.Errorf("%w: sell needs %s base, wallet has %s", ErrInsufficientFunds, amount, w.BaseBalance)
	}
	w.BaseBalance = w.BaseBalance.Sub(amount)
	w.QuoteBalance = w.QuoteBalance.Add(amount.Mul(price))
	return nil
}

// TotalValue is the wallet worth in quote currency at the given price.
func (w *Wallet) TotalValue(price decimal.Decimal) decimal.Decimal {
	return w.QuoteBalance.Add(w.BaseBalance.Mul(price))
}
