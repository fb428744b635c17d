package services

import (
	"context"
	"fmt"
	"log/slog"

	"kasir/internal/amqp"
	"kasir/internal/core"
	"kasir/internal/ledger"
)

// CashService owns the opening balance marker and reconciles the cash
// position from the two ledgers.
type CashService struct {
	cash     ledger.CashStore
	sales    ledger.SalesStore
	expenses ledger.ExpenseStore
	events   *amqp.Client
}

func NewCashService(cash ledger.CashStore, sales ledger.SalesStore, expenses ledger.ExpenseStore, events *amqp.Client) *CashService {
	return &CashService{
		cash:     cash,
		sales:    sales,
		expenses: expenses,
		events:   events,
	}
}

// SetOpeningBalance records the one-time opening balance. A second call
// fails with core.ErrAlreadyExists whatever the date; a non-positive
// amount fails with core.ErrInvalidAmount.
func (s *CashService) SetOpeningBalance(ctx context.Context, date core.Date, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("opening balance: %w", core.ErrInvalidAmount)
	}
	ev := core.CashEvent{
		Date:        date,
		Type:        core.CashEventOpeningBalance,
		Description: "Initial cash",
		Amount:      amount,
	}
	if err := s.cash.SetOpeningBalance(ctx, ev); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Opening balance set",
		"date", date.ISO(),
		"amount", amount,
		"component", "cash_service",
		"operation", "set_opening_balance")

	notifyLedgerChanged(ctx, s.events, amqp.KindOpeningBalance, date)
	return nil
}

// OpeningBalance returns the stored amount, or 0 when never set.
func (s *CashService) OpeningBalance(ctx context.Context) (int64, error) {
	return s.cash.OpeningBalance(ctx)
}

// Balance reconciles the cash position over a window:
// opening + sales - expenses. Sales and expenses are windowed; the
// opening balance always counts in full because it is the starting
// position of the ledger, not a flow inside the window.
func (s *CashService) Balance(ctx context.Context, r core.DateRange) (int64, error) {
	opening, err := s.cash.OpeningBalance(ctx)
	if err != nil {
		return 0, fmt.Errorf("opening balance: %w", err)
	}
	sales, err := s.sales.SalesTotal(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("sales total: %w", err)
	}
	expenses, err := s.expenses.ExpensesTotal(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("expenses total: %w", err)
	}
	return opening + sales - expenses, nil
}
