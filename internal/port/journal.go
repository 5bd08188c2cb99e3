package port

import (
	"context"

	"github.com/olyamironova/paper-exchange/internal/domain"
)

// Journal is an append-only audit mirror of ledger mutations.
// The ledger writes to it but never reads it back.
type Journal interface {
	SaveWallet(ctx context.Context, w *domain.Wallet) error
	SaveOrder(ctx context.Context, o *domain.Order) error
	// SaveFill records a filled order together with its transaction.
	SaveFill(ctx context.Context, o *domain.Order, t *domain.Transaction) error
}
