package shell

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/olyamironova/paper-exchange/internal/core"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, lines ...string) (string, *core.Ledger) {
	t.Helper()
	l, err := core.NewLedger(core.DefaultParams(), nil, nil)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	var out bytes.Buffer
	sh := New(l, log, &out)
	require.NoError(t, sh.Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")+"\n")))
	return out.String(), l
}

func TestShell_BuyAndBalance(t *testing.T) {
	out, l := runScript(t, "1", "3", "2", "2", "5", "6", "9")

	assert.Contains(t, out, "Wallet created: ")
	assert.Contains(t, out, "Successfully bought 2.000000 at 2500.00 (total 5000.00)")
	assert.Contains(t, out, "Quote: 5000.00")
	assert.Contains(t, out, "Base: 2.000000")
	assert.Contains(t, out, "Total Value: 10000.00")
	assert.Contains(t, out, "1. BUY 2.000000 @ 2500.00 (Total: 5000.00)")
	assert.Contains(t, out, "Total Orders: 1")
	assert.Contains(t, out, "Filled Orders: 1")
	assert.Contains(t, out, "Goodbye!")

	s := l.MarketSummary(context.Background())
	assert.Equal(t, 1, s.FilledOrders)
}

func TestShell_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		expect string
	}{
		{name: "NoWallet", lines: []string{"2"}, expect: "please create a wallet first"},
		{name: "NotANumber", lines: []string{"1", "3", "lots"}, expect: `invalid amount "lots"`},
		{name: "Zero", lines: []string{"1", "3", "0"}, expect: "must be > 0"},
		{name: "Negative", lines: []string{"1", "4", "-2"}, expect: "must be > 0"},
		{name: "SellWithoutBase", lines: []string{"1", "4", "1"}, expect: "insufficient funds"},
		{name: "UnknownChoice", lines: []string{"42"}, expect: "Invalid choice"},
		{name: "CancelUnknown", lines: []string{"8", "nope"}, expect: "order not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, l := runScript(t, append(tt.lines, "9")...)
			assert.Contains(t, out, tt.expect)
			assert.Equal(t, 0, l.MarketSummary(context.Background()).FilledOrders)
		})
	}
}

func TestShell_HistoryEmpty(t *testing.T) {
	out, _ := runScript(t, "1", "5", "9")
	assert.Contains(t, out, "No transactions found.")
}

func TestShell_SimulatePrice(t *testing.T) {
	out, l := runScript(t, "7", "9")
	assert.Contains(t, out, "New price: "+l.Price(context.Background()).StringFixed(2))
}

func TestShell_EOFEndsLoop(t *testing.T) {
	l, err := core.NewLedger(core.DefaultParams(), nil, nil)
	require.NoError(t, err)
	var out bytes.Buffer
	sh := New(l, logrus.New(), &out)
	assert.NoError(t, sh.Run(context.Background(), strings.NewReader("1\n")))
	assert.NotContains(t, out.String(), "Goodbye!")
}

func TestShell_CancelFilledOrder(t *testing.T) {
	// A blank order id defaults to the last order placed.
	out, _ := runScript(t, "1", "3", "1", "8", "", "9")
	assert.Contains(t, out, "invalid order state")
}

func TestShell_EOFInsidePrompt(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{name: "Amount", lines: []string{"1", "3"}},
		{name: "OrderID", lines: []string{"8"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := runScript(t, tt.lines...)
			assert.NotContains(t, out, "Error:")
			// One menu per choice read, none after input ends.
			assert.Equal(t, len(tt.lines), strings.Count(out, "=== Trading Menu ==="))
		})
	}
}
