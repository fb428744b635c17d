package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kasir/internal/catalog"
	"kasir/internal/reports"
	"kasir/internal/services"
	"kasir/internal/storage/csvstore"
)

const menu = "product_code,product_name,price\nLAT,Latte,25000\nESP,Espresso,18000\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	menuPath := filepath.Join(dir, "menu.csv")
	if err := os.WriteFile(menuPath, []byte(menu), 0644); err != nil {
		t.Fatalf("write menu: %v", err)
	}

	cat := catalog.New(menuPath)
	store := csvstore.New(filepath.Join(dir, "data"))
	sales := services.NewSalesService(cat, store, nil)
	expenses := services.NewExpenseService(store, nil)
	cash := services.NewCashService(store, store, store, nil)
	builder := reports.NewBuilder(cat, sales, expenses, cash)

	s := NewServer(":0", cat, sales, expenses, cash, builder)
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/catalog", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Products []productJSON `json:"products"`
	}
	decode(t, rec, &resp)
	if len(resp.Products) != 2 || resp.Products[0].Code != "LAT" {
		t.Fatalf("catalog must come back in file order: %+v", resp.Products)
	}
}

func TestRecordSalesAndTotal(t *testing.T) {
	s := newTestServer(t)

	body := `{"date":"2026-02-01","lines":[{"product_code":"LAT","qty":2},{"product_code":"ESP","qty":0}]}`
	rec := do(t, s, http.MethodPost, "/api/sales", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("record: got %d, body %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Entries []saleEntryJSON `json:"entries"`
	}
	decode(t, rec, &created)
	if len(created.Entries) != 1 || created.Entries[0].Total != 50000 {
		t.Fatalf("zero-qty line must be skipped: %+v", created.Entries)
	}

	rec = do(t, s, http.MethodGet, "/api/sales/total?start=2026-02-01&end=2026-02-28", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("total: got %d", rec.Code)
	}
	var total struct {
		Total int64 `json:"total"`
	}
	decode(t, rec, &total)
	if total.Total != 50000 {
		t.Fatalf("total: got %d", total.Total)
	}
}

func TestRecordSalesUnknownProduct(t *testing.T) {
	s := newTestServer(t)

	body := `{"date":"2026-02-01","lines":[{"product_code":"NOPE","qty":1}]}`
	rec := do(t, s, http.MethodPost, "/api/sales", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRecordSalesMalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/sales", `{"date":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSalesEndpointRejectsGet(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/sales", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "POST" {
		t.Fatalf("Allow header: got %q", allow)
	}
}

func TestOpeningBalanceSingleton(t *testing.T) {
	s := newTestServer(t)

	body := `{"date":"2026-01-01","amount":100000}`
	rec := do(t, s, http.MethodPost, "/api/cash/opening-balance", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first set: got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodPost, "/api/cash/opening-balance", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second set must 409, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/cash/opening-balance", "")
	var resp struct {
		Amount int64 `json:"amount"`
	}
	decode(t, rec, &resp)
	if resp.Amount != 100000 {
		t.Fatalf("stored amount: got %d", resp.Amount)
	}
}

func TestExpenseAcceptsGroupedAmountString(t *testing.T) {
	s := newTestServer(t)

	body := `{"date":"2026-02-01","category":"rent","description":"stall rent","amount":"20,000"}`
	rec := do(t, s, http.MethodPost, "/api/expenses", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("grouped amount string: got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/expenses/total", "")
	var resp struct {
		Total int64 `json:"total"`
	}
	decode(t, rec, &resp)
	if resp.Total != 20000 {
		t.Fatalf("total: got %d, want 20000", resp.Total)
	}
}

func TestExpenseRejectsMisgroupedAmountString(t *testing.T) {
	s := newTestServer(t)

	body := `{"date":"2026-02-01","category":"rent","description":"stall rent","amount":"2.5"}`
	rec := do(t, s, http.MethodPost, "/api/expenses", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestOpeningBalanceRejectsNonPositive(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/cash/opening-balance", `{"date":"2026-01-01","amount":0}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestBalanceReconciliation(t *testing.T) {
	s := newTestServer(t)

	steps := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/cash/opening-balance", `{"date":"2026-01-01","amount":100000}`, http.StatusCreated},
		{http.MethodPost, "/api/sales", `{"date":"2026-02-01","lines":[{"product_code":"LAT","qty":2}]}`, http.StatusOK},
		{http.MethodPost, "/api/expenses", `{"date":"2026-02-01","category":"rent","description":"stall rent","amount":20000}`, http.StatusCreated},
	}
	for _, step := range steps {
		rec := do(t, s, step.method, step.path, step.body)
		if rec.Code != step.want {
			t.Fatalf("%s %s: got %d, body %s", step.method, step.path, rec.Code, rec.Body.String())
		}
	}

	rec := do(t, s, http.MethodGet, "/api/cash/balance?start=2026-02-01&end=2026-02-28", "")
	var resp struct {
		Balance int64 `json:"balance"`
	}
	decode(t, rec, &resp)
	if resp.Balance != 130000 {
		t.Fatalf("balance: got %d, want 130000", resp.Balance)
	}

	// The opening balance counts even when its date is outside the window.
	rec = do(t, s, http.MethodGet, "/api/cash/balance", "")
	decode(t, rec, &resp)
	if resp.Balance != 130000 {
		t.Fatalf("open-bounds balance: got %d, want 130000", resp.Balance)
	}
}

func TestSalesReportRequiresBounds(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/reports/sales", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestSalesReportMalformedDate(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/reports/sales?start=01/02/2026&end=2026-02-28", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestCashflowReportShape(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/sales", `{"date":"2026-02-01","lines":[{"product_code":"ESP","qty":2}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("record: got %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/reports/cashflow?start=2026-02-01&end=2026-02-28", "")
	var resp struct {
		Lines   []cashflowLineJSON `json:"lines"`
		Inflow  int64              `json:"inflow"`
		Outflow int64              `json:"outflow"`
		Net     int64              `json:"net"`
	}
	decode(t, rec, &resp)
	if len(resp.Lines) != 4 {
		t.Fatalf("statement must have 4 lines, got %+v", resp.Lines)
	}
	if resp.Inflow != 36000 || resp.Net != 36000 {
		t.Fatalf("flow: %+v", resp)
	}
}

func TestSalesExport(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/sales", `{"date":"2026-02-01","lines":[{"product_code":"LAT","qty":1}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("record: got %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/reports/sales.xlsx?start=2026-02-01&end=2026-02-28", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: got %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("content type: got %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("export body is empty")
	}
}

func TestSalesExportEmptyWindowIs404(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/reports/sales.xlsx?start=2026-02-01&end=2026-02-28&detail=1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
