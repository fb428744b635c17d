package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"kasir/internal/amqp"
	"kasir/internal/core"
	"kasir/internal/ledger"
)

// ExpenseService records expenses and answers expense-side queries.
type ExpenseService struct {
	store  ledger.ExpenseStore
	events *amqp.Client
}

func NewExpenseService(store ledger.ExpenseStore, events *amqp.Client) *ExpenseService {
	return &ExpenseService{
		store:  store,
		events: events,
	}
}

// AddExpense validates and appends one expense entry.
func (s *ExpenseService) AddExpense(ctx context.Context, e core.ExpenseEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.store.AddExpense(ctx, e); err != nil {
		return fmt.Errorf("add expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense recorded",
		"date", e.Date.ISO(),
		"category", e.Category,
		"amount", e.Amount,
		"component", "expense_service",
		"operation", "add")

	notifyLedgerChanged(ctx, s.events, amqp.KindExpense, e.Date)
	return nil
}

// Total sums expense amounts inside the window; open bounds allowed.
func (s *ExpenseService) Total(ctx context.Context, r core.DateRange) (int64, error) {
	return s.store.ExpensesTotal(ctx, r)
}

// History returns all entries, newest day first.
func (s *ExpenseService) History(ctx context.Context) ([]core.ExpenseEntry, error) {
	return s.store.ExpensesHistory(ctx)
}

// ByCategory groups expenses in the window by category and sums them,
// categories in ascending order. Zero-total groups are filtered even
// though the amount invariant should make them impossible. Both bounds
// are required.
func (s *ExpenseService) ByCategory(ctx context.Context, r core.DateRange) ([]core.CategoryTotal, error) {
	if !r.Bounded() {
		return nil, fmt.Errorf("%w: expense report needs both start and end dates", core.ErrInvalidDate)
	}
	entries, err := s.store.ExpensesInRange(ctx, r)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]int64)
	for _, e := range entries {
		byCategory[e.Category] += e.Amount
	}

	out := make([]core.CategoryTotal, 0, len(byCategory))
	for category, total := range byCategory {
		if total <= 0 {
			continue
		}
		out = append(out, core.CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
