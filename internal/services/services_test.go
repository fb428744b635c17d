package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"kasir/internal/catalog"
	"kasir/internal/core"
	"kasir/internal/storage/csvstore"
)

const menu = "product_code,product_name,price\nLAT,Latte,25000\nESP,Espresso,18000\n"

type fixture struct {
	catalog  *catalog.Catalog
	store    *csvstore.Store
	sales    *SalesService
	expenses *ExpenseService
	cash     *CashService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	menuPath := filepath.Join(dir, "menu.csv")
	if err := os.WriteFile(menuPath, []byte(menu), 0644); err != nil {
		t.Fatalf("write menu: %v", err)
	}

	cat := catalog.New(menuPath)
	store := csvstore.New(filepath.Join(dir, "data"))
	return &fixture{
		catalog:  cat,
		store:    store,
		sales:    NewSalesService(cat, store, nil),
		expenses: NewExpenseService(store, nil),
		cash:     NewCashService(store, store, store, nil),
	}
}

func TestBuildSaleBatchSkipsZeroQty(t *testing.T) {
	f := newFixture(t)
	day := core.NewDate(2026, 2, 1)

	entries, err := f.sales.BuildSaleBatch([]SaleLine{
		{ProductCode: "LAT", Qty: 2},
		{ProductCode: "ESP", Qty: 0},
	}, day)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("zero-qty line must be dropped, got %d entries", len(entries))
	}
	e := entries[0]
	if e.ProductCode != "LAT" || e.Qty != 2 || e.Total != 50000 {
		t.Fatalf("entry: %+v", e)
	}
}

func TestBuildSaleBatchKeepsLineOrder(t *testing.T) {
	f := newFixture(t)

	entries, err := f.sales.BuildSaleBatch([]SaleLine{
		{ProductCode: "ESP", Qty: 1},
		{ProductCode: "LAT", Qty: 3},
	}, core.NewDate(2026, 2, 1))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(entries) != 2 || entries[0].ProductCode != "ESP" || entries[1].ProductCode != "LAT" {
		t.Fatalf("line order not preserved: %+v", entries)
	}
}

func TestBuildSaleBatchUnknownCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.sales.BuildSaleBatch([]SaleLine{{ProductCode: "TEA", Qty: 1}}, core.NewDate(2026, 2, 1))
	if !errors.Is(err, core.ErrInvalidProductCode) {
		t.Fatalf("expected ErrInvalidProductCode, got %v", err)
	}
}

func TestRecordDailySalesEmptyBatchIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entries, err := f.sales.RecordDailySales(ctx, []SaleLine{{ProductCode: "LAT", Qty: 0}}, core.NewDate(2026, 2, 1))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty batch, got %+v", entries)
	}
	history, err := f.sales.History(ctx)
	if err != nil || len(history) != 0 {
		t.Fatalf("ledger must stay untouched: %v, %v", history, err)
	}
}

func TestRecordDailySalesResubmitReplaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := core.NewDate(2026, 2, 1)

	if _, err := f.sales.RecordDailySales(ctx, []SaleLine{{ProductCode: "LAT", Qty: 3}}, day); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := f.sales.RecordDailySales(ctx, []SaleLine{{ProductCode: "LAT", Qty: 5}}, day); err != nil {
		t.Fatalf("second record: %v", err)
	}

	history, err := f.sales.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one row after resubmit, got %d", len(history))
	}
	if history[0].Qty != 5 || history[0].Total != 125000 {
		t.Fatalf("resubmit must replace, got %+v", history[0])
	}
}

func TestDetailedRequiresBothBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sales.Detailed(ctx, core.DateRange{Start: core.NewDate(2026, 2, 1)})
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDetailedLeftJoinsCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := core.NewDate(2026, 2, 1)

	// One catalog sale and one entry whose code is no longer on the menu.
	if _, err := f.sales.RecordDailySales(ctx, []SaleLine{{ProductCode: "LAT", Qty: 2}}, day); err != nil {
		t.Fatalf("record: %v", err)
	}
	err := f.store.UpsertSales(ctx, []core.SaleEntry{{Date: day, ProductCode: "OLD", Qty: 1, Total: 9000}})
	if err != nil {
		t.Fatalf("seed removed-product sale: %v", err)
	}

	rows, err := f.sales.Detailed(ctx, core.DateRange{Start: day, End: day})
	if err != nil {
		t.Fatalf("detailed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("left join must keep orphan rows, got %d", len(rows))
	}
	var orphan core.DetailedSale
	for _, r := range rows {
		if r.ProductName == "" {
			orphan = r
		}
	}
	if orphan.Total != 9000 || orphan.Price != 0 {
		t.Fatalf("orphan row: %+v", orphan)
	}
}

func TestExpenseByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := core.NewDate(2026, 2, 1)

	add := func(category string, amount int64) {
		t.Helper()
		err := f.expenses.AddExpense(ctx, core.ExpenseEntry{Date: day, Category: category, Description: "x", Amount: amount})
		if err != nil {
			t.Fatalf("add %s: %v", category, err)
		}
	}
	add("rent", 20000)
	add("supplies", 5000)
	add("rent", 10000)

	report, err := f.expenses.ByCategory(ctx, core.DateRange{Start: day, End: day})
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("expected 2 categories, got %+v", report)
	}
	if report[0].Category != "rent" || report[0].Total != 30000 {
		t.Fatalf("rent group: %+v", report[0])
	}
	if report[1].Category != "supplies" || report[1].Total != 5000 {
		t.Fatalf("supplies group: %+v", report[1])
	}
}

func TestSetOpeningBalanceValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.cash.SetOpeningBalance(ctx, core.NewDate(2026, 1, 1), 0)
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if err := f.cash.SetOpeningBalance(ctx, core.NewDate(2026, 1, 1), 100000); err != nil {
		t.Fatalf("set: %v", err)
	}
	err = f.cash.SetOpeningBalance(ctx, core.NewDate(2026, 3, 1), 50000)
	if !errors.Is(err, core.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

// The end-to-end reconciliation scenario: opening 100000, one latte day
// of 50000, rent of 20000.
func TestCashBalanceScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := core.NewDate(2026, 2, 1)

	entries, err := f.sales.RecordDailySales(ctx, []SaleLine{
		{ProductCode: "LAT", Qty: 2},
		{ProductCode: "ESP", Qty: 0},
	}, day)
	if err != nil {
		t.Fatalf("record sales: %v", err)
	}
	if len(entries) != 1 || entries[0].Total != 50000 {
		t.Fatalf("stored entries: %+v", entries)
	}

	total, err := f.sales.Total(ctx, core.DateRange{Start: day, End: day})
	if err != nil || total != 50000 {
		t.Fatalf("sales total: got %d, %v", total, err)
	}

	err = f.expenses.AddExpense(ctx, core.ExpenseEntry{Date: day, Category: "rent", Description: "stall rent", Amount: 20000})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if err := f.cash.SetOpeningBalance(ctx, core.NewDate(2026, 1, 1), 100000); err != nil {
		t.Fatalf("set opening: %v", err)
	}

	balance, err := f.cash.Balance(ctx, core.DateRange{Start: day, End: day})
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 130000 {
		t.Fatalf("balance: got %d, want 130000", balance)
	}

	// The opening balance is outside the window but still counts in full.
	balance, err = f.cash.Balance(ctx, core.DateRange{})
	if err != nil || balance != 130000 {
		t.Fatalf("open-bounds balance: got %d, %v", balance, err)
	}
}

// balance(start,end) must equal opening + sales - expenses for every
// choice of bounds.
func TestBalanceIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.cash.SetOpeningBalance(ctx, core.NewDate(2026, 1, 1), 75000); err != nil {
		t.Fatalf("set opening: %v", err)
	}
	days := []core.Date{core.NewDate(2026, 1, 10), core.NewDate(2026, 2, 10), core.NewDate(2026, 3, 10)}
	for _, day := range days {
		if _, err := f.sales.RecordDailySales(ctx, []SaleLine{{ProductCode: "LAT", Qty: 1}}, day); err != nil {
			t.Fatalf("record: %v", err)
		}
		err := f.expenses.AddExpense(ctx, core.ExpenseEntry{Date: day, Category: "ops", Description: "x", Amount: 4000})
		if err != nil {
			t.Fatalf("expense: %v", err)
		}
	}

	ranges := []core.DateRange{
		{},
		{Start: core.NewDate(2026, 2, 1)},
		{End: core.NewDate(2026, 2, 28)},
		{Start: core.NewDate(2026, 2, 1), End: core.NewDate(2026, 2, 28)},
		{Start: core.NewDate(2027, 1, 1)},
	}
	for i, r := range ranges {
		sales, err := f.sales.Total(ctx, r)
		if err != nil {
			t.Fatalf("range %d sales: %v", i, err)
		}
		expenses, err := f.expenses.Total(ctx, r)
		if err != nil {
			t.Fatalf("range %d expenses: %v", i, err)
		}
		balance, err := f.cash.Balance(ctx, r)
		if err != nil {
			t.Fatalf("range %d balance: %v", i, err)
		}
		if want := 75000 + sales - expenses; balance != want {
			t.Fatalf("range %d: balance %d, want %d", i, balance, want)
		}
	}
}
