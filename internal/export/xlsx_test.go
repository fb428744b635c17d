package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"kasir/internal/core"
)

func window() core.DateRange {
	return core.DateRange{Start: core.NewDate(2026, 2, 1), End: core.NewDate(2026, 2, 28)}
}

func cell(t *testing.T, raw []byte, ref string) string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()
	v, err := f.GetCellValue("Sheet1", ref)
	if err != nil {
		t.Fatalf("read cell %s: %v", ref, err)
	}
	return v
}

func TestDetailedSalesTotalRow(t *testing.T) {
	rows := []core.DetailedSale{
		{Date: core.NewDate(2026, 2, 1), ProductName: "Latte", Price: 25000, Qty: 2, Total: 50000},
		{Date: core.NewDate(2026, 2, 2), ProductName: "Espresso", Price: 18000, Qty: 1, Total: 18000},
	}

	raw, err := DetailedSales(rows, window())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if got := cell(t, raw, "A1"); got != "Sales Report" {
		t.Fatalf("title: got %q", got)
	}
	if got := cell(t, raw, "A2"); got != "2026-02-01 to 2026-02-28" {
		t.Fatalf("window: got %q", got)
	}
	if got := cell(t, raw, "B7"); got != "TOTAL" {
		t.Fatalf("total label: got %q", got)
	}
	if got := cell(t, raw, "D7"); got != "3" {
		t.Fatalf("total qty: got %q", got)
	}
	if got := cell(t, raw, "E7"); got != "68000" {
		t.Fatalf("total amount: got %q", got)
	}
}

func TestSalesSummaryFallsBackToCode(t *testing.T) {
	report := core.SalesReport{
		Rows: []core.ProductSummary{
			{ProductCode: "LAT", ProductName: "Latte", Qty: 2, Total: 50000},
			{ProductCode: "OLD", ProductName: "", Qty: 1, Total: 9000},
		},
		TotalQty:   3,
		GrandTotal: 59000,
	}

	raw, err := SalesSummary(report, window())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := cell(t, raw, "A6"); got != "OLD" {
		t.Fatalf("nameless product must fall back to its code, got %q", got)
	}
	if got := cell(t, raw, "C7"); got != "59000" {
		t.Fatalf("grand total: got %q", got)
	}
}

func TestEmptyExportIsErrNoData(t *testing.T) {
	if _, err := DetailedSales(nil, window()); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := SalesSummary(core.SalesReport{}, window()); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := CashflowStatement(nil, window()); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestCashflowStatementLines(t *testing.T) {
	lines := []core.CashflowLine{
		{Description: "Opening Balance", Amount: 100000},
		{Description: "Total Sales", Amount: 50000},
		{Description: "Total Expenses", Amount: 20000},
		{Description: "Final Cash Balance", Amount: 130000},
	}

	raw, err := CashflowStatement(lines, window())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := cell(t, raw, "A8"); got != "Final Cash Balance" {
		t.Fatalf("final line: got %q", got)
	}
	if got := cell(t, raw, "B8"); got != "130000" {
		t.Fatalf("final amount: got %q", got)
	}
}
