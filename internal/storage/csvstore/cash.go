package csvstore

import (
	"context"
	"fmt"

	"kasir/internal/core"
)

func (s *Store) readCashEvents() ([]core.CashEvent, error) {
	rows, err := s.readTable(cashFile, cashHeader)
	if err != nil {
		return nil, err
	}
	events := make([]core.CashEvent, 0, len(rows))
	for _, row := range rows {
		date, err := parseRowDate(cashFile, row[0])
		if err != nil {
			return nil, err
		}
		amount, err := parseRowInt(cashFile, "amount", row[3])
		if err != nil {
			return nil, err
		}
		events = append(events, core.CashEvent{
			Date:        date,
			Type:        row[1],
			Description: row[2],
			Amount:      amount,
		})
	}
	return events, nil
}

// SetOpeningBalance implements ledger.CashStore. The marker is a true
// singleton: a second set fails whatever its date.
func (s *Store) SetOpeningBalance(_ context.Context, ev core.CashEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readCashEvents()
	if err != nil {
		return err
	}
	for _, x := range existing {
		if x.Type == core.CashEventOpeningBalance {
			return fmt.Errorf("opening balance %w", core.ErrAlreadyExists)
		}
	}

	rows := make([][]string, 0, len(existing)+1)
	for _, x := range append(existing, ev) {
		rows = append(rows, []string{x.Date.ISO(), x.Type, x.Description, formatInt(x.Amount)})
	}
	return s.replaceTable(cashFile, cashHeader, rows)
}

// OpeningBalance implements ledger.CashStore. Absence means zero, so
// first-run callers never special-case an unset balance.
func (s *Store) OpeningBalance(_ context.Context) (int64, error) {
	events, err := s.readCashEvents()
	if err != nil {
		return 0, err
	}
	for _, x := range events {
		if x.Type == core.CashEventOpeningBalance {
			return x.Amount, nil
		}
	}
	return 0, nil
}
