package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"kasir/internal/core"
	"kasir/internal/export"
)

// writeJSON encodes v with the given status. Encoding failures are
// logged; the status line has already been sent by then.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Response encoding failed", "error", err, "url", r.URL.Path)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps a domain error onto an HTTP status and renders the
// JSON error body. Unmapped errors become 500 and are logged; the
// mapped ones carry their message to the client as-is.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"url", r.URL.Path,
			"status", status)
	}
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidProductCode),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidQty),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidDate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, core.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, export.ErrNoData):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// methodNotAllowed rejects the request, advertising what is accepted.
func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// decodeJSON decodes the request body into v, rejecting unknown fields
// so typos in payloads fail loudly instead of being dropped.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// amount is an amount in a request body. The counter form submits
// amounts either as a plain JSON number or as a grouped string like
// "25,000"; both land on the same integer.
type amount int64

func (a *amount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := core.ParseAmount(s)
		if err != nil {
			return err
		}
		*a = amount(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = amount(v)
	return nil
}

// writeDecodeError renders a body decoding failure. Domain errors
// surfaced through custom unmarshalers keep their mapped status; plain
// syntax errors are the client's fault and get 400.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	if statusForError(err) != http.StatusInternalServerError {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// parseRange reads the optional start/end query parameters. A missing
// parameter leaves that bound open; a malformed one is an error.
func parseRange(r *http.Request) (core.DateRange, error) {
	var out core.DateRange
	q := r.URL.Query()

	if v := q.Get("start"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.DateRange{}, fmt.Errorf("start: %w", err)
		}
		out.Start = d
	}
	if v := q.Get("end"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.DateRange{}, fmt.Errorf("end: %w", err)
		}
		out.End = d
	}
	return out, nil
}
