package in_memory

import (
	"context"
	"testing"
	"time"

	"github.com/olyamironova/paper-exchange/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_KeepsLatestVersion(t *testing.T) {
	ctx := context.Background()
	j := NewJournal()
	now := time.Now()

	o := &domain.Order{ID: "o-1", WalletID: "w-1", Side: domain.Buy, Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(2500), Status: domain.Pending, CreatedAt: now}
	require.NoError(t, j.SaveOrder(ctx, o))

	// Later mutation of the caller's value must not leak into the journal.
	o.Status = domain.Cancelled
	got, ok := j.Order("o-1")
	require.True(t, ok)
	assert.Equal(t, domain.Pending, got.Status)

	require.NoError(t, j.SaveOrder(ctx, o))
	got, _ = j.Order("o-1")
	assert.Equal(t, domain.Cancelled, got.Status)

	_, ok = j.Order("missing")
	assert.False(t, ok)
}

func TestJournal_Fills(t *testing.T) {
	ctx := context.Background()
	j := NewJournal()

	w := domain.NewWallet("w-1", decimal.NewFromInt(10000), time.Now())
	require.NoError(t, j.SaveWallet(ctx, w))
	got, ok := j.Wallet("w-1")
	require.True(t, ok)
	assert.True(t, got.QuoteBalance.Equal(decimal.NewFromInt(10000)))

	for i := 1; i <= 3; i++ {
		o := &domain.Order{ID: "o", Status: domain.Filled}
		tx := &domain.Transaction{ID: "t", Seq: uint64(i), OrderID: "o"}
		require.NoError(t, j.SaveFill(ctx, o, tx))
	}

	txs := j.Transactions()
	require.Len(t, txs, 3)
	for i, tx := range txs {
		assert.Equal(t, uint64(i+1), tx.Seq)
	}
	txs[0].Seq = 99
	assert.Equal(t, uint64(1), j.Transactions()[0].Seq)
}

func TestCache_MarketSummary(t *testing.T) {
	ctx := context.Background()
	c := NewCache()

	got, err := c.GetMarketSummary(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.SetMarketSummary(ctx, &domain.MarketSummary{Price: decimal.NewFromInt(2500), TotalOrders: 3, FilledOrders: 2}))
	got, err = c.GetMarketSummary(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.TotalOrders)
	assert.Equal(t, 2, got.FilledOrders)
	assert.Equal(t, 1, c.Writes())
}
