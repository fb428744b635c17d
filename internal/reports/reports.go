// Package reports builds the derived, read-only views consumed by the
// presentation and export layers. Every report is recomputed from the
// ledger on each call, so it is always consistent with the stored
// entries.
package reports

import (
	"context"
	"fmt"
	"sort"

	"kasir/internal/catalog"
	"kasir/internal/core"
	"kasir/internal/services"
)

// Cashflow statement line descriptions, in display order.
const (
	LineOpeningBalance = "Opening Balance"
	LineTotalSales     = "Total Sales"
	LineTotalExpenses  = "Total Expenses"
	LineFinalBalance   = "Final Cash Balance"
)

type Builder struct {
	catalog  *catalog.Catalog
	sales    *services.SalesService
	expenses *services.ExpenseService
	cash     *services.CashService
}

func NewBuilder(cat *catalog.Catalog, sales *services.SalesService, expenses *services.ExpenseService, cash *services.CashService) *Builder {
	return &Builder{
		catalog:  cat,
		sales:    sales,
		expenses: expenses,
		cash:     cash,
	}
}

// SalesSummaryByProduct groups sales in the window by product code and
// sums quantity and total, product codes ascending. Groups that sum to
// zero quantity are dropped. Product names come from a left join with
// the catalog: a code that has since left the menu keeps its row with
// an empty name so historical totals never silently shrink.
func (b *Builder) SalesSummaryByProduct(ctx context.Context, r core.DateRange) ([]core.ProductSummary, error) {
	if !r.Bounded() {
		return nil, fmt.Errorf("%w: sales summary needs both start and end dates", core.ErrInvalidDate)
	}
	entries, err := b.sales.EntriesInRange(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	type agg struct {
		qty   int64
		total int64
	}
	byCode := make(map[string]*agg)
	for _, e := range entries {
		a, ok := byCode[e.ProductCode]
		if !ok {
			a = &agg{}
			byCode[e.ProductCode] = a
		}
		a.qty += e.Qty
		a.total += e.Total
	}

	idx, err := b.catalog.Index()
	if err != nil {
		return nil, err
	}

	rows := make([]core.ProductSummary, 0, len(byCode))
	for code, a := range byCode {
		if a.qty <= 0 {
			continue
		}
		rows = append(rows, core.ProductSummary{
			ProductCode: code,
			ProductName: idx[code].Name,
			Qty:         a.qty,
			Total:       a.total,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProductCode < rows[j].ProductCode })
	return rows, nil
}

// SalesReport is the product summary plus grand totals over all rows.
func (b *Builder) SalesReport(ctx context.Context, r core.DateRange) (core.SalesReport, error) {
	rows, err := b.SalesSummaryByProduct(ctx, r)
	if err != nil {
		return core.SalesReport{}, err
	}
	report := core.SalesReport{Rows: rows}
	for _, row := range rows {
		report.TotalQty += row.Qty
		report.GrandTotal += row.Total
	}
	return report, nil
}

// CashflowStatement renders the four-line statement. The opening
// balance line is never windowed; sales and expenses are. The line
// order is fixed and significant for display.
func (b *Builder) CashflowStatement(ctx context.Context, r core.DateRange) ([]core.CashflowLine, error) {
	opening, err := b.cash.OpeningBalance(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := b.sales.Total(ctx, r)
	if err != nil {
		return nil, err
	}
	expenses, err := b.expenses.Total(ctx, r)
	if err != nil {
		return nil, err
	}

	return []core.CashflowLine{
		{Description: LineOpeningBalance, Amount: opening},
		{Description: LineTotalSales, Amount: sales},
		{Description: LineTotalExpenses, Amount: expenses},
		{Description: LineFinalBalance, Amount: opening + sales - expenses},
	}, nil
}

// Cashflow summarizes money movement inside the window only: sales in,
// expenses out, net difference. The opening balance plays no part here.
func (b *Builder) Cashflow(ctx context.Context, r core.DateRange) (core.Cashflow, error) {
	sales, err := b.sales.Total(ctx, r)
	if err != nil {
		return core.Cashflow{}, err
	}
	expenses, err := b.expenses.Total(ctx, r)
	if err != nil {
		return core.Cashflow{}, err
	}
	return core.Cashflow{
		Inflow:  sales,
		Outflow: expenses,
		Net:     sales - expenses,
	}, nil
}

// ExpensesByCategory delegates to the expense aggregator.
func (b *Builder) ExpensesByCategory(ctx context.Context, r core.DateRange) ([]core.CategoryTotal, error) {
	return b.expenses.ByCategory(ctx, r)
}

// DetailedSales delegates to the sales aggregator.
func (b *Builder) DetailedSales(ctx context.Context, r core.DateRange) ([]core.DetailedSale, error) {
	return b.sales.Detailed(ctx, r)
}
