// Package export renders report output as printable xlsx workbooks for
// the presentation layer. It only consumes what the report builder
// produces; no ledger access happens here.
package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"kasir/internal/core"
)

// ErrNoData is returned when there is nothing to export for the window.
var ErrNoData = errors.New("no data to export")

const sheet = "Sheet1"

// DetailedSales renders one row per sale entry with a terminal TOTAL
// row, like the printable range report on the counter.
func DetailedSales(rows []core.DetailedSale, r core.DateRange) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeTitle(f, "Sales Report", r); err != nil {
		return nil, err
	}
	if err := writeHeader(f, 4, []string{"Date", "Product", "Price", "Qty", "Total"}); err != nil {
		return nil, err
	}

	var totalQty, totalAmount int64
	for i, row := range rows {
		totalQty += row.Qty
		totalAmount += row.Total
		if err := writeRow(f, 5+i, []any{row.Date.ISO(), row.ProductName, row.Price, row.Qty, row.Total}); err != nil {
			return nil, err
		}
	}
	if err := writeTotalRow(f, 5+len(rows), []any{"", "TOTAL", "", totalQty, totalAmount}); err != nil {
		return nil, err
	}

	return workbookBytes(f)
}

// SalesSummary renders the grouped-by-product report with the grand
// total row.
func SalesSummary(report core.SalesReport, r core.DateRange) ([]byte, error) {
	if len(report.Rows) == 0 {
		return nil, ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeTitle(f, "Sales Summary", r); err != nil {
		return nil, err
	}
	if err := writeHeader(f, 4, []string{"Product", "Quantity", "Total"}); err != nil {
		return nil, err
	}

	for i, row := range report.Rows {
		name := row.ProductName
		if name == "" {
			name = row.ProductCode
		}
		if err := writeRow(f, 5+i, []any{name, row.Qty, row.Total}); err != nil {
			return nil, err
		}
	}
	if err := writeTotalRow(f, 5+len(report.Rows), []any{"TOTAL", report.TotalQty, report.GrandTotal}); err != nil {
		return nil, err
	}

	return workbookBytes(f)
}

// CashflowStatement renders the four-line statement in its fixed order.
func CashflowStatement(lines []core.CashflowLine, r core.DateRange) ([]byte, error) {
	if len(lines) == 0 {
		return nil, ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeTitle(f, "Cashflow Statement", r); err != nil {
		return nil, err
	}
	if err := writeHeader(f, 4, []string{"Description", "Amount"}); err != nil {
		return nil, err
	}
	for i, line := range lines {
		if err := writeRow(f, 5+i, []any{line.Description, line.Amount}); err != nil {
			return nil, err
		}
	}

	return workbookBytes(f)
}

func writeTitle(f *excelize.File, title string, r core.DateRange) error {
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	window := fmt.Sprintf("%s to %s", r.Start.ISO(), r.End.ISO())
	if err := f.SetCellValue(sheet, "A2", window); err != nil {
		return fmt.Errorf("write window: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("title style: %w", err)
	}
	return f.SetCellStyle(sheet, "A1", "A1", bold)
}

func writeHeader(f *excelize.File, row int, cols []string) error {
	if err := writeRow(f, row, toAny(cols)); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(cols), row)
	return f.SetCellStyle(sheet, first, last, bold)
}

func writeTotalRow(f *excelize.File, row int, values []any) error {
	if err := writeRow(f, row, values); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("total style: %w", err)
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(values), row)
	return f.SetCellStyle(sheet, first, last, bold)
}

func writeRow(f *excelize.File, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("write cell %s: %w", cell, err)
		}
	}
	return nil
}

func workbookBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
