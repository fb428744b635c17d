// Package http exposes the ledger engine over a JSON API. Handlers
// stay thin: parse, call a service, map the error, encode the result.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"kasir/internal/catalog"
	"kasir/internal/reports"
	"kasir/internal/services"
)

type Server struct {
	http.Server

	catalog  *catalog.Catalog
	sales    *services.SalesService
	expenses *services.ExpenseService
	cash     *services.CashService
	reports  *reports.Builder

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run server.
func NewServer(addr string, cat *catalog.Catalog, sales *services.SalesService, expenses *services.ExpenseService, cash *services.CashService, builder *reports.Builder) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		catalog:     cat,
		sales:       sales,
		expenses:    expenses,
		cash:        cash,
		reports:     builder,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/api/catalog", s.withRequestContext(s.handleCatalog))

	mux.HandleFunc("/api/sales", s.withRequestContext(s.handleRecordSales))
	mux.HandleFunc("/api/sales/total", s.withRequestContext(s.handleSalesTotal))
	mux.HandleFunc("/api/sales/history", s.withRequestContext(s.handleSalesHistory))
	mux.HandleFunc("/api/sales/detailed", s.withRequestContext(s.handleSalesDetailed))

	mux.HandleFunc("/api/expenses", s.withRequestContext(s.handleAddExpense))
	mux.HandleFunc("/api/expenses/total", s.withRequestContext(s.handleExpensesTotal))
	mux.HandleFunc("/api/expenses/history", s.withRequestContext(s.handleExpensesHistory))

	mux.HandleFunc("/api/cash/opening-balance", s.withRequestContext(s.handleOpeningBalance))
	mux.HandleFunc("/api/cash/balance", s.withRequestContext(s.handleBalance))

	mux.HandleFunc("/api/reports/sales", s.withRequestContext(s.handleSalesReport))
	mux.HandleFunc("/api/reports/expenses", s.withRequestContext(s.handleExpenseReport))
	mux.HandleFunc("/api/reports/cashflow", s.withRequestContext(s.handleCashflowReport))
	mux.HandleFunc("/api/reports/sales.xlsx", s.withRequestContext(s.handleSalesExport))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestContext adds request logging, a request ID for tracing and
// rate limiting for writes.
func (s *Server) withRequestContext(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
