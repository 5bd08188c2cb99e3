package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/olyamironova/paper-exchange/internal/domain"
	"github.com/olyamironova/paper-exchange/internal/port"
)

var _ port.Journal = (*PgJournal)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS wallets (
  id            TEXT PRIMARY KEY,
  quote_balance NUMERIC NOT NULL,
  base_balance  NUMERIC NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS orders (
  id         TEXT PRIMARY KEY,
  wallet_id  TEXT NOT NULL,
  side       TEXT NOT NULL,
  amount     NUMERIC NOT NULL,
  price      NUMERIC NOT NULL,
  status     TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  filled_at  TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS transactions (
  id          TEXT PRIMARY KEY,
  run_id      TEXT NOT NULL,
  seq         BIGINT NOT NULL,
  wallet_id   TEXT NOT NULL,
  order_id    TEXT NOT NULL,
  side        TEXT NOT NULL,
  amount      NUMERIC NOT NULL,
  price       NUMERIC NOT NULL,
  total_value NUMERIC NOT NULL,
  timestamp   TIMESTAMPTZ NOT NULL
);
ALTER TABLE transactions ADD COLUMN IF NOT EXISTS run_id TEXT NOT NULL DEFAULT '';
ALTER TABLE transactions DROP CONSTRAINT IF EXISTS transactions_seq_key;
CREATE UNIQUE INDEX IF NOT EXISTS transactions_run_seq ON transactions(run_id, seq);
`

// PgJournal mirrors ledger records into Postgres. Nothing is read back.
type PgJournal struct {
	pool *pgxpool.Pool
}

// NewPgJournal opens a pool and checks the server is reachable.
// Close releases the pool.
func NewPgJournal(ctx context.Context, dsn string) (*PgJournal, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &PgJournal{pool: pool}, nil
}

func (p *PgJournal) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Migrate creates the journal tables if they are missing.
func (p *PgJournal) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("pg: migrate: %w", err)
	}
	return nil
}

func (p *PgJournal) SaveWallet(ctx context.Context, w *domain.Wallet) error {
	if w == nil {
		return errors.New("pg: nil wallet")
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO wallets(id, quote_balance, base_balance, created_at)
VALUES($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET
  quote_balance = EXCLUDED.quote_balance,
  base_balance = EXCLUDED.base_balance
`, w.ID, w.QuoteBalance, w.BaseBalance, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("pg: save wallet %s: %w", w.ID, err)
	}
	return nil
}

func (p *PgJournal) SaveOrder(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return errors.New("pg: nil order")
	}
	if err := saveOrder(ctx, p.pool, o); err != nil {
		return fmt.Errorf("pg: save order %s: %w", o.ID, err)
	}
	return nil
}

// SaveFill writes the filled order and its transaction atomically.
func (p *PgJournal) SaveFill(ctx context.Context, o *domain.Order, t *domain.Transaction) error {
	if o == nil || t == nil {
		return errors.New("pg: nil fill")
	}
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if err := saveOrder(ctx, tx, o); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
INSERT INTO transactions(id, run_id, seq, wallet_id, order_id, side, amount, price, total_value, timestamp)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO NOTHING
`, t.ID, t.RunID, int64(t.Seq), t.WalletID, t.OrderID, string(t.Side), t.Amount, t.Price, t.TotalValue, t.Timestamp)
		return err
	})
	if err != nil {
		return fmt.Errorf("pg: save fill %s: %w", t.ID, err)
	}
	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func saveOrder(ctx context.Context, db execer, o *domain.Order) error {
	_, err := db.Exec(ctx, `
INSERT INTO orders(id, wallet_id, side, amount, price, status, created_at, filled_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  filled_at = EXCLUDED.filled_at
`, o.ID, o.WalletID, string(o.Side), o.Amount, o.Price, string(o.Status), o.CreatedAt, o.FilledAt)
	return err
}
