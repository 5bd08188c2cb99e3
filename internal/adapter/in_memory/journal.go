package in_memory

import (
	"context"
	"sync"

	"github.com/olyamironova/paper-exchange/internal/domain"
	"github.com/olyamironova/paper-exchange/internal/port"
)

var _ port.Journal = (*Journal)(nil)

// Journal keeps every record it is handed, latest version per wallet and
// order plus the full transaction sequence.
type Journal struct {
	mu           sync.Mutex
	wallets      map[string]domain.Wallet
	orders       map[string]domain.Order
	transactions []domain.Transaction
}

func NewJournal() *Journal {
	return &Journal{
		wallets: make(map[string]domain.Wallet),
		orders:  make(map[string]domain.Order),
	}
}

func (j *Journal) SaveWallet(ctx context.Context, w *domain.Wallet) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.wallets[w.ID] = *w
	return nil
}

func (j *Journal) SaveOrder(ctx context.Context, o *domain.Order) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.orders[o.ID] = *o.Clone()
	return nil
}

func (j *Journal) SaveFill(ctx context.Context, o *domain.Order, t *domain.Transaction) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.orders[o.ID] = *o.Clone()
	j.transactions = append(j.transactions, *t)
	return nil
}

func (j *Journal) Wallet(id string) (domain.Wallet, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	w, ok := j.wallets[id]
	return w, ok
}

func (j *Journal) Order(id string) (domain.Order, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	o, ok := j.orders[id]
	return o, ok
}

func (j *Journal) Transactions() []domain.Transaction {
	j.mu.Lock()
	defer j.mu.Unlock()
	res := make([]domain.Transaction, len(j.transactions))
	copy(res, j.transactions)
	return res
}
