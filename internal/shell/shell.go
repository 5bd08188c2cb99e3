// Package shell is the interactive trading menu on top of a ledger.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olyamironova/paper-exchange/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	quotePlaces = 2
	basePlaces  = 6
)

// Ledger is the part of core.Ledger the menu drives.
type Ledger interface {
	CreateWallet(ctx context.Context) string
	CreateOrder(ctx context.Context, walletID string, side domain.Side, amount, price decimal.Decimal) (string, error)
	ExecuteOrder(ctx context.Context, orderID string) (*domain.Transaction, error)
	CancelOrder(ctx context.Context, orderID string) error
	UpdatePrice(ctx context.Context) decimal.Decimal
	BalanceOf(ctx context.Context, walletID string) (domain.Balance, bool)
	HistoryOf(ctx context.Context, walletID string) []domain.Transaction
	MarketSummary(ctx context.Context) domain.MarketSummary
	Price(ctx context.Context) decimal.Decimal
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var (
	errNoWallet    = errors.New("please create a wallet first")
	errInputClosed = errors.New("input closed")
)

type Shell struct {
	ledger Ledger
	log    logrus.FieldLogger
	out    io.Writer

	walletID  string
	lastOrder string
}

func New(ledger Ledger, log logrus.FieldLogger, out io.Writer) *Shell {
	return &Shell{ledger: ledger, log: log, out: out}
}

// Run serves the menu until the user exits, input ends or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	s.println(titleStyle.Render("Welcome to the paper exchange"))
	s.printf("Current price: %s\n", s.ledger.Price(ctx).StringFixed(quotePlaces))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.menu()
		choice, ok := s.prompt(sc, "Enter choice: ")
		if !ok {
			return sc.Err()
		}

		var err error
		switch choice {
		case "1":
			s.createWallet(ctx)
		case "2":
			err = s.balance(ctx)
		case "3":
			err = s.trade(ctx, sc, domain.Buy)
		case "4":
			err = s.trade(ctx, sc, domain.Sell)
		case "5":
			err = s.history(ctx)
		case "6":
			s.summary(ctx)
		case "7":
			p := s.ledger.UpdatePrice(ctx)
			s.log.WithField("price", p.String()).Debug("price updated")
			s.printf("New price: %s\n", p.StringFixed(quotePlaces))
		case "8":
			err = s.cancel(ctx, sc)
		case "9":
			s.println("Goodbye!")
			return nil
		default:
			s.println(errStyle.Render("Invalid choice, enter a number from 1 to 9."))
		}
		if errors.Is(err, errInputClosed) {
			return sc.Err()
		}
		s.report(err)
	}
}

func (s *Shell) menu() {
	s.println("")
	s.println(titleStyle.Render("=== Trading Menu ==="))
	for i, item := range []string{
		"Create Wallet",
		"View Balance",
		"Buy",
		"Sell",
		"View Transaction History",
		"View Market Summary",
		"Simulate Price Change",
		"Cancel Order",
		"Exit",
	} {
		s.printf("%d. %s\n", i+1, item)
	}
}

func (s *Shell) createWallet(ctx context.Context) {
	s.walletID = s.ledger.CreateWallet(ctx)
	s.log.WithField("wallet", s.walletID).Info("wallet created")
	s.println(okStyle.Render("Wallet created: " + s.walletID))
}

func (s *Shell) balance(ctx context.Context) error {
	if s.walletID == "" {
		return errNoWallet
	}
	b, ok := s.ledger.BalanceOf(ctx, s.walletID)
	if !ok {
		return domain.ErrWalletNotFound
	}
	s.println(titleStyle.Render("Wallet Balance"))
	s.printf("Quote: %s\n", b.Quote.StringFixed(quotePlaces))
	s.printf("Base: %s\n", b.Base.StringFixed(basePlaces))
	s.printf("Total Value: %s\n", b.TotalValue.StringFixed(quotePlaces))
	return nil
}

// trade places a market order at the current price and fills it at once.
func (s *Shell) trade(ctx context.Context, sc *bufio.Scanner, side domain.Side) error {
	if s.walletID == "" {
		return errNoWallet
	}
	price := s.ledger.Price(ctx)
	s.printf("Current price: %s\n", price.StringFixed(quotePlaces))

	raw, ok := s.prompt(sc, "Amount: ")
	if !ok {
		return errInputClosed
	}
	amount, err := parseAmount(raw)
	if err != nil {
		return err
	}

	orderID, err := s.ledger.CreateOrder(ctx, s.walletID, side, amount, price)
	if err != nil {
		return fmt.Errorf("create %s order: %w", strings.ToLower(string(side)), err)
	}
	s.lastOrder = orderID
	tx, err := s.ledger.ExecuteOrder(ctx, orderID)
	if err != nil {
		s.printf("%s\n", dimStyle.Render("Order "+orderID+" stays pending and can be cancelled."))
		return fmt.Errorf("execute %s order: %w", strings.ToLower(string(side)), err)
	}
	s.log.WithFields(logrus.Fields{
		"wallet": tx.WalletID,
		"order":  tx.OrderID,
		"side":   tx.Side,
		"amount": tx.Amount.String(),
		"price":  tx.Price.String(),
	}).Info("order filled")

	verb := "bought"
	if side == domain.Sell {
		verb = "sold"
	}
	s.println(okStyle.Render(fmt.Sprintf("Successfully %s %s at %s (total %s)",
		verb, tx.Amount.StringFixed(basePlaces), tx.Price.StringFixed(quotePlaces), tx.TotalValue.StringFixed(quotePlaces))))
	return nil
}

func (s *Shell) history(ctx context.Context) error {
	if s.walletID == "" {
		return errNoWallet
	}
	txs := s.ledger.HistoryOf(ctx, s.walletID)
	if len(txs) == 0 {
		s.println("No transactions found.")
		return nil
	}
	s.println(titleStyle.Render("Transaction History"))
	for i, tx := range txs {
		s.printf("%d. %s %s @ %s (Total: %s) - %s\n", i+1, tx.Side,
			tx.Amount.StringFixed(basePlaces), tx.Price.StringFixed(quotePlaces),
			tx.TotalValue.StringFixed(quotePlaces), tx.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (s *Shell) summary(ctx context.Context) {
	m := s.ledger.MarketSummary(ctx)
	s.println(titleStyle.Render("Market Summary"))
	s.printf("Current Price: %s\n", m.Price.StringFixed(quotePlaces))
	s.printf("Total Orders: %d\n", m.TotalOrders)
	s.printf("Filled Orders: %d\n", m.FilledOrders)
}

func (s *Shell) cancel(ctx context.Context, sc *bufio.Scanner) error {
	hint := ""
	if s.lastOrder != "" {
		hint = " [" + s.lastOrder + "]"
	}
	id, ok := s.prompt(sc, "Order ID"+hint+": ")
	if !ok {
		return errInputClosed
	}
	if id == "" {
		id = s.lastOrder
	}
	if err := s.ledger.CancelOrder(ctx, id); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	s.log.WithField("order", id).Info("order cancelled")
	s.println(okStyle.Render("Order " + id + " cancelled"))
	return nil
}

func (s *Shell) report(err error) {
	if err == nil {
		return
	}
	s.log.WithError(err).Debug("menu action failed")
	s.println(errStyle.Render("Error: " + err.Error()))
}

func (s *Shell) prompt(sc *bufio.Scanner, label string) (string, bool) {
	s.printf("%s", label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid amount %q: must be > 0", raw)
	}
	return amount, nil
}
