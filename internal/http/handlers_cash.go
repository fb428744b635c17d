package http

import (
	"net/http"

	"kasir/internal/core"
)

type openingBalanceRequest struct {
	Date   core.Date `json:"date"`
	Amount amount    `json:"amount"`
}

// handleOpeningBalance sets the one-time opening balance on POST and
// reads the stored amount on GET.
func (s *Server) handleOpeningBalance(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req openingBalanceRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDecodeError(w, r, err)
			return
		}
		if err := req.Date.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.cash.SetOpeningBalance(r.Context(), req.Date, int64(req.Amount)); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, req)

	case http.MethodGet:
		amount, err := s.cash.OpeningBalance(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, struct {
			Amount int64 `json:"amount"`
		}{Amount: amount})

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// handleBalance reconciles cash over the window:
// opening + sales - expenses, with the opening always counted in full.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	dr, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := s.cash.Balance(r.Context(), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Balance int64 `json:"balance"`
	}{Balance: balance})
}
