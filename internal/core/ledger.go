package core

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/olyamironova/paper-exchange/internal/domain"
	"github.com/olyamironova/paper-exchange/internal/port"
	"github.com/shopspring/decimal"
)

// Params are the fixed economics of a ledger.
type Params struct {
	SeedBalance  decimal.Decimal
	InitialPrice decimal.Decimal
	Band         PriceBand
}

func DefaultParams() Params {
	return Params{
		SeedBalance:  decimal.NewFromInt(10000),
		InitialPrice: decimal.NewFromInt(2500),
		Band: PriceBand{
			Floor:      decimal.NewFromInt(1000),
			Ceiling:    decimal.NewFromInt(5000),
			MaxStepBps: 100,
		},
	}
}

func (p Params) Validate() error {
	if p.SeedBalance.IsNegative() {
		return fmt.Errorf("seed balance must be >= 0, got %s", p.SeedBalance)
	}
	if err := p.Band.Validate(); err != nil {
		return err
	}
	if p.InitialPrice.LessThan(p.Band.Floor) || p.InitialPrice.GreaterThan(p.Band.Ceiling) {
		return fmt.Errorf("initial price %s outside [%s, %s]", p.InitialPrice, p.Band.Floor, p.Band.Ceiling)
	}
	return nil
}

type Option func(*Ledger)

// WithRandomSource sets the generator driving UpdatePrice.
// The ledger only calls it under its write lock.
func WithRandomSource(r RandomSource) Option {
	return func(l *Ledger) { l.rnd = r }
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithErrorHandler receives journal and cache failures. Sink failures never
// fail the ledger operation that triggered them.
func WithErrorHandler(fn func(op string, err error)) Option {
	return func(l *Ledger) { l.onError = fn }
}

// Ledger owns every wallet, order and transaction of one simulated market.
// Mutations are serialized; queries may run concurrently with each other.
type Ledger struct {
	journal port.Journal
	cache   port.Cache

	runID   string
	params  Params
	rnd     RandomSource
	now     func() time.Time
	onError func(op string, err error)

	// sinkMu is held by a mutation from before it commits until its journal
	// and cache writes return, so sinks observe commits in ledger order.
	// Lock order: sinkMu, then mu.
	sinkMu sync.Mutex

	mu           sync.RWMutex
	wallets      map[string]*domain.Wallet
	orders       map[string]*domain.Order
	transactions []*domain.Transaction
	filled       int
	price        decimal.Decimal
}

// NewLedger builds an empty ledger. journal and cache may be nil.
func NewLedger(params Params, journal port.Journal, cache port.Cache, opts ...Option) (*Ledger, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	l := &Ledger{
		journal: journal,
		cache:   cache,
		runID:   uuid.NewString(),
		params:  params,
		now:     time.Now,
		wallets: make(map[string]*domain.Wallet),
		orders:  make(map[string]*domain.Order),
		price:   params.InitialPrice,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rnd == nil {
		l.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return l, nil
}

// CreateWallet allocates a wallet holding the seed quote balance and no base.
func (l *Ledger) CreateWallet(ctx context.Context) string {
	l.sinkMu.Lock()
	defer l.sinkMu.Unlock()

	l.mu.Lock()
	w := domain.NewWallet(uuid.NewString(), l.params.SeedBalance, l.now())
	l.wallets[w.ID] = w
	cpy := *w
	l.mu.Unlock()

	if l.journal != nil {
		l.report("save wallet", l.journal.SaveWallet(ctx, &cpy))
	}
	return cpy.ID
}

// CreateOrder stores a pending order after checking the wallet could cover
// it right now. Funds are not reserved; ExecuteOrder checks again.
func (l *Ledger) CreateOrder(ctx context.Context, walletID string, side domain.Side, amount, price decimal.Decimal) (string, error) {
	l.sinkMu.Lock()
	defer l.sinkMu.Unlock()

	o, summary, err := l.createOrder(walletID, side, amount, price)
	if err != nil {
		return "", err
	}
	if l.journal != nil {
		l.report("save order", l.journal.SaveOrder(ctx, o))
	}
	l.publish(ctx, summary)
	return o.ID, nil
}

func (l *Ledger) createOrder(walletID string, side domain.Side, amount, price decimal.Decimal) (*domain.Order, *domain.MarketSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.wallets[walletID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, walletID)
	}
	if !side.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrInvalidSide, side)
	}
	if !amount.IsPositive() || !price.IsPositive() {
		return nil, nil, fmt.Errorf("%w: amount=%s price=%s", domain.ErrInvalidAmount, amount, price)
	}
	switch side {
	case domain.Buy:
		if !w.CanAffordBuy(amount, price) {
			return nil, nil, fmt.Errorf("%w: buy %s at %s needs %s quote, wallet has %s",
				domain.ErrInsufficientFunds, amount, price, amount.Mul(price), w.QuoteBalance)
		}
	case domain.Sell:
		if !w.CanAffordSell(amount) {
			return nil, nil, fmt.Errorf("%w: sell %s base, wallet has %s",
				domain.ErrInsufficientFunds, amount, w.BaseBalance)
		}
	}

	o := &domain.Order{
		ID:        uuid.NewString(),
		WalletID:  walletID,
		Side:      side,
		Amount:    amount,
		Price:     price,
		Status:    domain.Pending,
		CreatedAt: l.now(),
	}
	l.orders[o.ID] = o
	return o.Clone(), l.summaryLocked(), nil
}

// ExecuteOrder applies a pending order to its wallet, appends the receipt to
// the transaction log and marks the order filled. A failed execution leaves
// the order pending and all balances unchanged.
func (l *Ledger) ExecuteOrder(ctx context.Context, orderID string) (*domain.Transaction, error) {
	l.sinkMu.Lock()
	defer l.sinkMu.Unlock()

	o, w, tx, summary, err := l.executeOrder(orderID)
	if err != nil {
		return nil, err
	}
	if l.journal != nil {
		l.report("save fill", l.journal.SaveFill(ctx, o, tx))
		l.report("save wallet", l.journal.SaveWallet(ctx, w))
	}
	l.publish(ctx, summary)
	return tx, nil
}

func (l *Ledger) executeOrder(orderID string) (*domain.Order, *domain.Wallet, *domain.Transaction, *domain.MarketSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[orderID]
	if !ok {
		return nil, nil, nil, nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	if o.Status != domain.Pending {
		return nil, nil, nil, nil, fmt.Errorf("%w: order %s is %s", domain.ErrInvalidState, orderID, o.Status)
	}
	w, ok := l.wallets[o.WalletID]
	if !ok {
		return nil, nil, nil, nil, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, o.WalletID)
	}

	var err error
	switch o.Side {
	case domain.Buy:
		err = w.Buy(o.Amount, o.Price)
	case domain.Sell:
		err = w.Sell(o.Amount, o.Price)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrInvalidSide, o.Side)
	}
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("execute order %s: %w", orderID, err)
	}

	now := l.now()
	tx := &domain.Transaction{
		ID:         uuid.NewString(),
		RunID:      l.runID,
		Seq:        uint64(len(l.transactions)) + 1,
		WalletID:   o.WalletID,
		OrderID:    o.ID,
		Side:       o.Side,
		Amount:     o.Amount,
		Price:      o.Price,
		TotalValue: o.Total(),
		Timestamp:  now,
	}
	l.transactions = append(l.transactions, tx)
	o.Status = domain.Filled
	o.FilledAt = &now
	l.filled++

	txCopy, wCopy := *tx, *w
	return o.Clone(), &wCopy, &txCopy, l.summaryLocked(), nil
}

// CancelOrder moves a pending order to Cancelled. Nothing was reserved at
// creation, so no balance changes.
func (l *Ledger) CancelOrder(ctx context.Context, orderID string) error {
	l.sinkMu.Lock()
	defer l.sinkMu.Unlock()

	o, summary, err := l.cancelOrder(orderID)
	if err != nil {
		return err
	}
	if l.journal != nil {
		l.report("save order", l.journal.SaveOrder(ctx, o))
	}
	l.publish(ctx, summary)
	return nil
}

func (l *Ledger) cancelOrder(orderID string) (*domain.Order, *domain.MarketSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[orderID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	if o.Status != domain.Pending {
		return nil, nil, fmt.Errorf("%w: cannot cancel order %s in status %s", domain.ErrInvalidState, orderID, o.Status)
	}
	o.Status = domain.Cancelled
	return o.Clone(), l.summaryLocked(), nil
}

// UpdatePrice advances the market price one random-walk step and returns it.
// The result always lies within the configured band.
func (l *Ledger) UpdatePrice(ctx context.Context) decimal.Decimal {
	l.sinkMu.Lock()
	defer l.sinkMu.Unlock()

	l.mu.Lock()
	l.price = l.params.Band.Step(l.price, l.rnd)
	price := l.price
	summary := l.summaryLocked()
	l.mu.Unlock()

	l.publish(ctx, summary)
	return price
}

// BalanceOf values the wallet at the current market price.
func (l *Ledger) BalanceOf(ctx context.Context, walletID string) (domain.Balance, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	w, ok := l.wallets[walletID]
	if !ok {
		return domain.Balance{}, false
	}
	return domain.Balance{
		WalletID:   w.ID,
		Quote:      w.QuoteBalance,
		Base:       w.BaseBalance,
		TotalValue: w.TotalValue(l.price),
	}, true
}

// HistoryOf returns the wallet's transactions in execution order.
func (l *Ledger) HistoryOf(ctx context.Context, walletID string) []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var res []domain.Transaction
	for _, t := range l.transactions {
		if t.WalletID == walletID {
			res = append(res, *t)
		}
	}
	return res
}

func (l *Ledger) MarketSummary(ctx context.Context) domain.MarketSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return *l.summaryLocked()
}

// RunID is stamped on every transaction this ledger produces.
func (l *Ledger) RunID() string {
	return l.runID
}

func (l *Ledger) Price(ctx context.Context) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.price
}

func (l *Ledger) Order(ctx context.Context, orderID string) (*domain.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	o, ok := l.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	return o.Clone(), nil
}

func (l *Ledger) Wallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	w, ok := l.wallets[walletID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, walletID)
	}
	cpy := *w
	return &cpy, nil
}

func (l *Ledger) summaryLocked() *domain.MarketSummary {
	return &domain.MarketSummary{
		Price:        l.price,
		TotalOrders:  len(l.orders),
		FilledOrders: l.filled,
		Timestamp:    l.now(),
	}
}

func (l *Ledger) publish(ctx context.Context, s *domain.MarketSummary) {
	if l.cache == nil {
		return
	}
	l.report("cache market summary", l.cache.SetMarketSummary(ctx, s))
}

func (l *Ledger) report(op string, err error) {
	if err != nil && l.onError != nil {
		l.onError(op, err)
	}
}
