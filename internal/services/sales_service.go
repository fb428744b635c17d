// Package services orchestrates the ledger engine: batch building,
// validation, persistence and the optional change notification side
// channel. Notification failures are logged and never fail a request.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"kasir/internal/amqp"
	"kasir/internal/catalog"
	"kasir/internal/core"
	"kasir/internal/ledger"
)

// SaleLine is one line of a submitted daily sales form: a product code
// and how many were sold. Lines keep the form's order, which fixes the
// order of the built batch.
type SaleLine struct {
	ProductCode string `json:"product_code"`
	Qty         int64  `json:"qty"`
}

// SalesService builds and persists daily sale batches and answers
// sales-side queries.
type SalesService struct {
	catalog *catalog.Catalog
	store   ledger.SalesStore
	events  *amqp.Client
}

func NewSalesService(cat *catalog.Catalog, store ledger.SalesStore, events *amqp.Client) *SalesService {
	return &SalesService{
		catalog: cat,
		store:   store,
		events:  events,
	}
}

// BuildSaleBatch turns submitted quantities into sale entries. Lines
// with qty <= 0 are skipped: they mean "no sale of this item", not an
// error. An unknown product code fails the whole batch with
// core.ErrInvalidProductCode. Totals capture the catalog price at this
// moment; later price changes never touch stored entries.
func (s *SalesService) BuildSaleBatch(lines []SaleLine, saleDate core.Date) ([]core.SaleEntry, error) {
	if err := saleDate.Validate(); err != nil {
		return nil, err
	}
	prices, err := s.catalog.PriceIndex()
	if err != nil {
		return nil, err
	}

	entries := make([]core.SaleEntry, 0, len(lines))
	for _, line := range lines {
		if line.Qty <= 0 {
			continue // no sale of this item
		}
		price, ok := prices[line.ProductCode]
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrInvalidProductCode, line.ProductCode)
		}
		entries = append(entries, core.SaleEntry{
			Date:        saleDate,
			ProductCode: line.ProductCode,
			Qty:         line.Qty,
			Total:       price * line.Qty,
		})
	}
	return entries, nil
}

// RecordDailySales builds the batch and upserts it. An all-zero form is
// a no-op and leaves the ledger untouched.
func (s *SalesService) RecordDailySales(ctx context.Context, lines []SaleLine, saleDate core.Date) ([]core.SaleEntry, error) {
	entries, err := s.BuildSaleBatch(lines, saleDate)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		slog.InfoContext(ctx, "Empty sales batch, nothing to record", "date", saleDate.ISO())
		return entries, nil
	}

	if err := s.store.UpsertSales(ctx, entries); err != nil {
		return nil, fmt.Errorf("upsert sales: %w", err)
	}

	slog.InfoContext(ctx, "Daily sales recorded",
		"date", saleDate.ISO(),
		"entries", len(entries),
		"component", "sales_service",
		"operation", "record")

	notifyLedgerChanged(ctx, s.events, amqp.KindSales, saleDate)
	return entries, nil
}

// Total sums sale totals inside the window; open bounds allowed.
func (s *SalesService) Total(ctx context.Context, r core.DateRange) (int64, error) {
	return s.store.SalesTotal(ctx, r)
}

// History returns all entries, newest day first.
func (s *SalesService) History(ctx context.Context) ([]core.SaleEntry, error) {
	return s.store.SalesHistory(ctx)
}

// EntriesInRange returns the raw entries inside the window in stored
// order.
func (s *SalesService) EntriesInRange(ctx context.Context, r core.DateRange) ([]core.SaleEntry, error) {
	return s.store.SalesInRange(ctx, r)
}

// Detailed joins entries in the window with the catalog for display.
// Both bounds are required. The join is a left join: a sale whose
// product has left the catalog keeps its row with an empty name and
// zero price.
func (s *SalesService) Detailed(ctx context.Context, r core.DateRange) ([]core.DetailedSale, error) {
	if !r.Bounded() {
		return nil, fmt.Errorf("%w: detailed sales need both start and end dates", core.ErrInvalidDate)
	}
	entries, err := s.store.SalesInRange(ctx, r)
	if err != nil {
		return nil, err
	}
	idx, err := s.catalog.Index()
	if err != nil {
		return nil, err
	}

	out := make([]core.DetailedSale, len(entries))
	for i, e := range entries {
		p := idx[e.ProductCode] // zero value when the code is gone
		out[i] = core.DetailedSale{
			Date:        e.Date,
			ProductName: p.Name,
			Price:       p.Price,
			Qty:         e.Qty,
			Total:       e.Total,
		}
	}
	return out, nil
}

// notifyLedgerChanged fires the optional change notification. A nil
// client disables it; publish errors are logged and swallowed so the
// ledger write they follow still succeeds.
func notifyLedgerChanged(ctx context.Context, events *amqp.Client, kind string, date core.Date) {
	if events == nil {
		return
	}
	msg := amqp.NewLedgerChangedMessage(kind, date)
	if err := events.PublishLedgerChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change notification",
			"error", err,
			"kind", kind,
			"date", date.ISO())
	}
}
