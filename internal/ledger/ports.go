// Package ledger defines the outbound ports of the ledger engine. Any
// storage that can return all rows of a record kind and atomically
// replace them with a new full set can implement these.
package ledger

import (
	"context"

	"kasir/internal/core"
)

type (
	// SalesStore persists sale entries keyed by (date, product_code).
	SalesStore interface {
		// UpsertSales replaces any stored entry sharing a key with a
		// submitted one, then appends the batch. Readers observe either
		// the pre- or post-batch state, never an interleaving.
		UpsertSales(ctx context.Context, entries []core.SaleEntry) error

		// SalesTotal sums entry totals inside the window. Open bounds are
		// allowed; a missing store counts as zero.
		SalesTotal(ctx context.Context, r core.DateRange) (int64, error)

		// SalesHistory returns all entries sorted by date descending,
		// ties broken by product code ascending. Missing store -> empty.
		SalesHistory(ctx context.Context) ([]core.SaleEntry, error)

		// SalesInRange returns the entries inside the window in stored
		// order.
		SalesInRange(ctx context.Context, r core.DateRange) ([]core.SaleEntry, error)
	}

	// ExpenseStore persists expense entries as a pure append log.
	ExpenseStore interface {
		AddExpense(ctx context.Context, e core.ExpenseEntry) error
		ExpensesTotal(ctx context.Context, r core.DateRange) (int64, error)

		// ExpensesHistory returns all entries sorted by date descending.
		ExpensesHistory(ctx context.Context) ([]core.ExpenseEntry, error)
		ExpensesInRange(ctx context.Context, r core.DateRange) ([]core.ExpenseEntry, error)
	}

	// CashStore holds the one-time opening balance marker.
	CashStore interface {
		// SetOpeningBalance records the marker. A second call fails with
		// core.ErrAlreadyExists regardless of date.
		SetOpeningBalance(ctx context.Context, ev core.CashEvent) error

		// OpeningBalance returns the stored amount, or 0 when no marker
		// has ever been set.
		OpeningBalance(ctx context.Context) (int64, error)
	}

	// Store is the full persistence surface the engine needs from a
	// backend.
	Store interface {
		SalesStore
		ExpenseStore
		CashStore
	}
)
