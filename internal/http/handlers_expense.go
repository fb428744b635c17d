package http

import (
	"net/http"

	"kasir/internal/core"
)

type expenseRequest struct {
	Date        core.Date `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      amount    `json:"amount"`
}

type expenseJSON struct {
	Date        core.Date `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
}

// handleAddExpense appends one expense entry to the ledger.
func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	entry := core.ExpenseEntry{
		Date:        req.Date,
		Category:    req.Category,
		Description: req.Description,
		Amount:      int64(req.Amount),
	}
	if err := s.expenses.AddExpense(r.Context(), entry); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, expenseJSON{
		Date:        entry.Date,
		Category:    entry.Category,
		Description: entry.Description,
		Amount:      entry.Amount,
	})
}

func (s *Server) handleExpensesTotal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	dr, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	total, err := s.expenses.Total(r.Context(), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Total int64 `json:"total"`
	}{Total: total})
}

func (s *Server) handleExpensesHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	entries, err := s.expenses.History(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]expenseJSON, len(entries))
	for i, e := range entries {
		out[i] = expenseJSON{
			Date:        e.Date,
			Category:    e.Category,
			Description: e.Description,
			Amount:      e.Amount,
		}
	}
	writeJSON(w, r, http.StatusOK, struct {
		Entries []expenseJSON `json:"entries"`
	}{Entries: out})
}
