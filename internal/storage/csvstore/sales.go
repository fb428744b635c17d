package csvstore

import (
	"context"
	"sort"

	"kasir/internal/core"
)

func (s *Store) readSales() ([]core.SaleEntry, error) {
	rows, err := s.readTable(salesFile, salesHeader)
	if err != nil {
		return nil, err
	}
	entries := make([]core.SaleEntry, 0, len(rows))
	for _, row := range rows {
		date, err := parseRowDate(salesFile, row[0])
		if err != nil {
			return nil, err
		}
		qty, err := parseRowInt(salesFile, "qty", row[2])
		if err != nil {
			return nil, err
		}
		total, err := parseRowInt(salesFile, "total", row[3])
		if err != nil {
			return nil, err
		}
		entries = append(entries, core.SaleEntry{
			Date:        date,
			ProductCode: row[1],
			Qty:         qty,
			Total:       total,
		})
	}
	return entries, nil
}

func (s *Store) writeSales(entries []core.SaleEntry) error {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Date.ISO(), e.ProductCode, formatInt(e.Qty), formatInt(e.Total)}
	}
	return s.replaceTable(salesFile, salesHeader, rows)
}

// UpsertSales implements ledger.SalesStore. Stored entries sharing a
// key with any submitted entry are dropped, then the batch is appended.
// A duplicate key inside the batch resolves last-in-batch-wins.
func (s *Store) UpsertSales(_ context.Context, entries []core.SaleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readSales()
	if err != nil {
		return err
	}

	replaced := make(map[string]bool, len(entries))
	for _, e := range entries {
		replaced[e.Key()] = true
	}
	kept := existing[:0]
	for _, e := range existing {
		if !replaced[e.Key()] {
			kept = append(kept, e)
		}
	}

	return s.writeSales(append(kept, dedupeLastWins(entries)...))
}

// dedupeLastWins collapses duplicate keys inside one batch, keeping the
// final occurrence at its position.
func dedupeLastWins(entries []core.SaleEntry) []core.SaleEntry {
	last := make(map[string]int, len(entries))
	for i, e := range entries {
		last[e.Key()] = i
	}
	out := make([]core.SaleEntry, 0, len(last))
	for i, e := range entries {
		if last[e.Key()] == i {
			out = append(out, e)
		}
	}
	return out
}

// SalesTotal implements ledger.SalesStore.
func (s *Store) SalesTotal(_ context.Context, r core.DateRange) (int64, error) {
	entries, err := s.readSales()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if r.Contains(e.Date) {
			total += e.Total
		}
	}
	return total, nil
}

// SalesHistory implements ledger.SalesStore: date descending, product
// code ascending within a day.
func (s *Store) SalesHistory(_ context.Context) ([]core.SaleEntry, error) {
	entries, err := s.readSales()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date.Time) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].ProductCode < entries[j].ProductCode
	})
	return entries, nil
}

// SalesInRange implements ledger.SalesStore.
func (s *Store) SalesInRange(_ context.Context, r core.DateRange) ([]core.SaleEntry, error) {
	entries, err := s.readSales()
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}
