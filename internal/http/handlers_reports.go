package http

import (
	"net/http"
	"strconv"

	"kasir/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type productSummaryJSON struct {
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Qty         int64  `json:"qty"`
	Total       int64  `json:"total"`
}

// handleSalesReport returns the per-product summary with grand totals.
func (s *Server) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	dr, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.reports.SalesReport(r.Context(), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows := make([]productSummaryJSON, len(report.Rows))
	for i, row := range report.Rows {
		rows[i] = productSummaryJSON{
			ProductCode: row.ProductCode,
			ProductName: row.ProductName,
			Qty:         row.Qty,
			Total:       row.Total,
		}
	}
	writeJSON(w, r, http.StatusOK, struct {
		Rows       []productSummaryJSON `json:"rows"`
		TotalQty   int64                `json:"total_qty"`
		GrandTotal int64                `json:"grand_total"`
	}{Rows: rows, TotalQty: report.TotalQty, GrandTotal: report.GrandTotal})
}

type categoryTotalJSON struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

func (s *Server) handleExpenseReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	dr, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.reports.ExpensesByCategory(r.Context(), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryTotalJSON, len(rows))
	for i, row := range rows {
		out[i] = categoryTotalJSON{Category: row.Category, Total: row.Total}
	}
	writeJSON(w, r, http.StatusOK, struct {
		Rows []categoryTotalJSON `json:"rows"`
	}{Rows: out})
}

type cashflowLineJSON struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// handleCashflowReport returns the four-line statement plus the
// window-only flow summary.
func (s *Server) handleCashflowReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	dr, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines, err := s.reports.CashflowStatement(r.Context(), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	flow, err := s.reports.Cashflow(r.Context(), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]cashflowLineJSON, len(lines))
	for i, line := range lines {
		out[i] = cashflowLineJSON{Description: line.Description, Amount: line.Amount}
	}
	writeJSON(w, r, http.StatusOK, struct {
		Lines   []cashflowLineJSON `json:"lines"`
		Inflow  int64              `json:"inflow"`
		Outflow int64              `json:"outflow"`
		Net     int64              `json:"net"`
	}{Lines: out, Inflow: flow.Inflow, Outflow: flow.Outflow, Net: flow.Net})
}

// handleSalesExport streams the sales report as an xlsx workbook.
// detail=1 switches from the per-product summary to one row per entry.
func (s *Server) handleSalesExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	dr, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var raw []byte
	if r.URL.Query().Get("detail") == "1" {
		rows, err := s.reports.DetailedSales(r.Context(), dr)
		if err != nil {
			writeError(w, r, err)
			return
		}
		raw, err = export.DetailedSales(rows, dr)
		if err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		report, err := s.reports.SalesReport(r.Context(), dr)
		if err != nil {
			writeError(w, r, err)
			return
		}
		raw, err = export.SalesSummary(report, dr)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	name := "sales_" + dr.Start.ISO() + "_" + dr.End.ISO() + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(raw)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
