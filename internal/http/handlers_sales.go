package http

import (
	"net/http"

	"kasir/internal/core"
	"kasir/internal/services"
)

type recordSalesRequest struct {
	Date  core.Date           `json:"date"`
	Lines []services.SaleLine `json:"lines"`
}

type saleEntryJSON struct {
	Date        core.Date `json:"date"`
	ProductCode string    `json:"product_code"`
	Qty         int64     `json:"qty"`
	Total       int64     `json:"total"`
}

func toSaleEntriesJSON(entries []core.SaleEntry) []saleEntryJSON {
	out := make([]saleEntryJSON, len(entries))
	for i, e := range entries {
		out[i] = saleEntryJSON{
			Date:        e.Date,
			ProductCode: e.ProductCode,
			Qty:         e.Qty,
			Total:       e.Total,
		}
	}
	return out
}

// handleRecordSales records (or replaces) the sales of one day from the
// submitted quantity lines.
func (s *Server) handleRecordSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req recordSalesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	entries, err := s.sales.RecordDailySales(r.Context(), req.Lines, req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, struct {
		Date    core.Date       `json:"date"`
		Entries []saleEntryJSON `json:"entries"`
	}{Date: req.Date, Entries: toSaleEntriesJSON(entries)})
}

func (s *Server) handleSalesTotal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	dr, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	total, err := s.sales.Total(r.Context(), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Total int64 `json:"total"`
	}{Total: total})
}

func (s *Server) handleSalesHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	entries, err := s.sales.History(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Entries []saleEntryJSON `json:"entries"`
	}{Entries: toSaleEntriesJSON(entries)})
}

type detailedSaleJSON struct {
	Date        core.Date `json:"date"`
	ProductName string    `json:"product_name"`
	Price       int64     `json:"price"`
	Qty         int64     `json:"qty"`
	Total       int64     `json:"total"`
}

// handleSalesDetailed returns one row per entry in the window, joined
// with the live catalog. Both bounds are required.
func (s *Server) handleSalesDetailed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	dr, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.sales.Detailed(r.Context(), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]detailedSaleJSON, len(rows))
	for i, row := range rows {
		out[i] = detailedSaleJSON{
			Date:        row.Date,
			ProductName: row.ProductName,
			Price:       row.Price,
			Qty:         row.Qty,
			Total:       row.Total,
		}
	}
	writeJSON(w, r, http.StatusOK, struct {
		Rows []detailedSaleJSON `json:"rows"`
	}{Rows: out})
}
