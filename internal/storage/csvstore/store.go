// Package csvstore implements the ledger ports on flat CSV files, the
// reference persistence format (one file per record kind with a fixed
// column header, ISO dates, integer amounts).
//
// All mutations funnel through a single mutex-guarded owner and land as
// a whole-file replace via a temp file and rename, so concurrent
// readers observe either the previous or the new full state. Reads take
// no lock. Missing files degrade to empty results; they are created on
// first write.
package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"kasir/internal/core"
)

const (
	salesFile    = "daily_sales.csv"
	expensesFile = "expenses.csv"
	cashFile     = "cash_events.csv"
)

var (
	salesHeader    = []string{"date", "product_code", "qty", "total"}
	expensesHeader = []string{"date", "category", "description", "amount"}
	cashHeader     = []string{"date", "type", "description", "amount"}
)

type Store struct {
	mu  sync.Mutex
	dir string
}

// New returns a store rooted at dir. The directory is created on demand
// by the first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// readTable returns all data rows of the named file, or (nil, nil) when
// the file does not exist yet. A present but unreadable or misshapen
// file is core.ErrDataUnavailable.
func (s *Store) readTable(name string, header []string) ([][]string, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open %s: %v", core.ErrDataUnavailable, name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", core.ErrDataUnavailable, name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if len(records[0]) != len(header) {
		return nil, fmt.Errorf("%w: %s: expected %d columns, found %d", core.ErrDataUnavailable, name, len(header), len(records[0]))
	}
	for i, col := range header {
		if strings.TrimSpace(records[0][i]) != col {
			return nil, fmt.Errorf("%w: %s: unexpected header %q", core.ErrDataUnavailable, name, records[0][i])
		}
	}
	return records[1:], nil
}

// replaceTable atomically replaces the named file with header+rows. The
// temp file lives in the same directory so the rename cannot cross
// filesystems.
func (s *Store) replaceTable(name string, header []string, rows [][]string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func parseRowInt(name, field, v string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: bad %s %q", core.ErrDataUnavailable, name, field, v)
	}
	return n, nil
}

func parseRowDate(name, v string) (core.Date, error) {
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %s: bad date %q", core.ErrDataUnavailable, name, v)
	}
	return d, nil
}
