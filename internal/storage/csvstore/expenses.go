package csvstore

import (
	"context"
	"sort"

	"kasir/internal/core"
)

func (s *Store) readExpenses() ([]core.ExpenseEntry, error) {
	rows, err := s.readTable(expensesFile, expensesHeader)
	if err != nil {
		return nil, err
	}
	entries := make([]core.ExpenseEntry, 0, len(rows))
	for _, row := range rows {
		date, err := parseRowDate(expensesFile, row[0])
		if err != nil {
			return nil, err
		}
		amount, err := parseRowInt(expensesFile, "amount", row[3])
		if err != nil {
			return nil, err
		}
		entries = append(entries, core.ExpenseEntry{
			Date:        date,
			Category:    row[1],
			Description: row[2],
			Amount:      amount,
		})
	}
	return entries, nil
}

// AddExpense implements ledger.ExpenseStore. Pure append: no key, no
// replacement.
func (s *Store) AddExpense(_ context.Context, e core.ExpenseEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readExpenses()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(existing)+1)
	for _, x := range append(existing, e) {
		rows = append(rows, []string{x.Date.ISO(), x.Category, x.Description, formatInt(x.Amount)})
	}
	return s.replaceTable(expensesFile, expensesHeader, rows)
}

// ExpensesTotal implements ledger.ExpenseStore.
func (s *Store) ExpensesTotal(_ context.Context, r core.DateRange) (int64, error) {
	entries, err := s.readExpenses()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if r.Contains(e.Date) {
			total += e.Amount
		}
	}
	return total, nil
}

// ExpensesHistory implements ledger.ExpenseStore: date descending,
// insertion order preserved within a day.
func (s *Store) ExpensesHistory(_ context.Context) ([]core.ExpenseEntry, error) {
	entries, err := s.readExpenses()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

// ExpensesInRange implements ledger.ExpenseStore.
func (s *Store) ExpensesInRange(_ context.Context, r core.DateRange) ([]core.ExpenseEntry, error) {
	entries, err := s.readExpenses()
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}
