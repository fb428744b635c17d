// Package sqlite implements the ledger ports on a SQLite database.
// It is the substitutable alternative to the flat-file reference
// backend: same observable contract, with the read-all/atomic-replace
// semantics provided by transactions instead of file renames.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"kasir/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", core.ErrDataUnavailable, err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// rangeClause renders the optional date window as SQL conditions. ISO
// dates compare correctly as text.
func rangeClause(dr core.DateRange) (string, []any) {
	clause := ""
	var args []any
	if !dr.Start.IsZero() {
		clause += " AND date >= ?"
		args = append(args, dr.Start.ISO())
	}
	if !dr.End.IsZero() {
		clause += " AND date <= ?"
		args = append(args, dr.End.ISO())
	}
	return clause, args
}

// UpsertSales implements ledger.SalesStore. Delete-then-insert inside
// one transaction gives the same replace semantics as the flat-file
// backend; duplicate keys within the batch are collapsed last-wins
// before the insert.
func (r *Repository) UpsertSales(ctx context.Context, entries []core.SaleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	last := make(map[string]int, len(entries))
	for i, e := range entries {
		last[e.Key()] = i
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	for i, e := range entries {
		if last[e.Key()] != i {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM sales WHERE date = ? AND product_code = ?`,
			e.Date.ISO(), e.ProductCode); err != nil {
			return fmt.Errorf("delete replaced sale: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sales (date, product_code, qty, total) VALUES (?, ?, ?, ?)`,
			e.Date.ISO(), e.ProductCode, e.Qty, e.Total); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}

	slog.DebugContext(ctx, "Sales batch upserted", "entries", len(entries))
	return nil
}

// SalesTotal implements ledger.SalesStore.
func (r *Repository) SalesTotal(ctx context.Context, dr core.DateRange) (int64, error) {
	clause, args := rangeClause(dr)
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM sales WHERE 1=1`+clause, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum sales: %w", err)
	}
	return total, nil
}

// SalesHistory implements ledger.SalesStore.
func (r *Repository) SalesHistory(ctx context.Context) ([]core.SaleEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, product_code, qty, total FROM sales ORDER BY date DESC, product_code ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sales history: %w", err)
	}
	defer rows.Close()
	return scanSales(rows)
}

// SalesInRange implements ledger.SalesStore.
func (r *Repository) SalesInRange(ctx context.Context, dr core.DateRange) ([]core.SaleEntry, error) {
	clause, args := rangeClause(dr)
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, product_code, qty, total FROM sales WHERE 1=1`+clause+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales in range: %w", err)
	}
	defer rows.Close()
	return scanSales(rows)
}

func scanSales(rows *sql.Rows) ([]core.SaleEntry, error) {
	var entries []core.SaleEntry
	for rows.Next() {
		var (
			e       core.SaleEntry
			rawDate string
		)
		if err := rows.Scan(&rawDate, &e.ProductCode, &e.Qty, &e.Total); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		date, err := core.ParseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("%w: stored sale date %q", core.ErrDataUnavailable, rawDate)
		}
		e.Date = date
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddExpense implements ledger.ExpenseStore.
func (r *Repository) AddExpense(ctx context.Context, e core.ExpenseEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (date, category, description, amount) VALUES (?, ?, ?, ?)`,
		e.Date.ISO(), e.Category, e.Description, e.Amount)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// ExpensesTotal implements ledger.ExpenseStore.
func (r *Repository) ExpensesTotal(ctx context.Context, dr core.DateRange) (int64, error) {
	clause, args := rangeClause(dr)
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE 1=1`+clause, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

// ExpensesHistory implements ledger.ExpenseStore.
func (r *Repository) ExpensesHistory(ctx context.Context) ([]core.ExpenseEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, category, description, amount FROM expenses ORDER BY date DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query expense history: %w", err)
	}
	defer rows.Close()
	return scanExpenses(rows)
}

// ExpensesInRange implements ledger.ExpenseStore.
func (r *Repository) ExpensesInRange(ctx context.Context, dr core.DateRange) ([]core.ExpenseEntry, error) {
	clause, args := rangeClause(dr)
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, category, description, amount FROM expenses WHERE 1=1`+clause+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses in range: %w", err)
	}
	defer rows.Close()
	return scanExpenses(rows)
}

func scanExpenses(rows *sql.Rows) ([]core.ExpenseEntry, error) {
	var entries []core.ExpenseEntry
	for rows.Next() {
		var (
			e       core.ExpenseEntry
			rawDate string
		)
		if err := rows.Scan(&rawDate, &e.Category, &e.Description, &e.Amount); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		date, err := core.ParseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("%w: stored expense date %q", core.ErrDataUnavailable, rawDate)
		}
		e.Date = date
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SetOpeningBalance implements ledger.CashStore.
func (r *Repository) SetOpeningBalance(ctx context.Context, ev core.CashEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set opening balance: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cash_events WHERE type = ?`, core.CashEventOpeningBalance).Scan(&count)
	if err != nil {
		return fmt.Errorf("check opening balance: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("opening balance %w", core.ErrAlreadyExists)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cash_events (date, type, description, amount) VALUES (?, ?, ?, ?)`,
		ev.Date.ISO(), ev.Type, ev.Description, ev.Amount); err != nil {
		return fmt.Errorf("insert opening balance: %w", err)
	}

	return tx.Commit()
}

// OpeningBalance implements ledger.CashStore.
func (r *Repository) OpeningBalance(ctx context.Context) (int64, error) {
	var amount int64
	err := r.db.QueryRowContext(ctx,
		`SELECT amount FROM cash_events WHERE type = ? ORDER BY id ASC LIMIT 1`,
		core.CashEventOpeningBalance).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read opening balance: %w", err)
	}
	return amount, nil
}
