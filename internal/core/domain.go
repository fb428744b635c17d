package core

import (
	"errors"
	"strings"
	"time"
)

// CashEventOpeningBalance marks the one-time opening balance row in the
// cash events ledger.
const CashEventOpeningBalance = "opening_balance"

type (
	// Date is a calendar date with day granularity, stored at midnight UTC.
	// The zero value means "unset" and is used for open range bounds.
	Date struct {
		time.Time
	}

	// Product is a catalog row. Price is in the smallest whole currency
	// unit; the engine never deals in fractional amounts.
	Product struct {
		Code  string
		Name  string
		Price int64
	}

	// SaleEntry is one sold product on one day. Total is captured at
	// creation time from the catalog price and is never re-derived, so a
	// later price change does not rewrite history. The pair
	// (Date, ProductCode) is the entry's natural key.
	SaleEntry struct {
		Date        Date
		ProductCode string
		Qty         int64
		Total       int64
	}

	// ExpenseEntry is an append-only expense record. There is no natural
	// key; several entries may share date and category.
	ExpenseEntry struct {
		Date        Date
		Category    string
		Description string
		Amount      int64
	}

	// CashEvent is a row in the cash events ledger. Only the
	// opening_balance type exists today.
	CashEvent struct {
		Date        Date
		Type        string
		Description string
		Amount      int64
	}

	// DateRange is an inclusive date window. A zero Start or End leaves
	// that side open.
	DateRange struct {
		Start Date
		End   Date
	}
)

var (
	ErrInvalidProductCode = errors.New("invalid product code")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAlreadyExists      = errors.New("already exists")
	ErrDataUnavailable    = errors.New("data unavailable")

	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidQty    = errors.New("invalid quantity")
)

// DateFormat is the ISO-8601 layout used everywhere dates cross a
// boundary: files, query parameters, JSON.
const DateFormat = "2006-01-02"

// NewDate builds a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO renders the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(DateFormat)
}

// Before reports whether d falls on an earlier day than x.
func (d Date) Before(x Date) bool { return d.Time.Before(x.Time) }

// After reports whether d falls on a later day than x.
func (d Date) After(x Date) bool { return d.Time.After(x.Time) }

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON encodes the date as an ISO-8601 string, or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.ISO() + `"`), nil
}

// UnmarshalJSON accepts an ISO-8601 string or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Contains reports whether d falls inside the window. Open bounds match
// everything on their side.
func (r DateRange) Contains(d Date) bool {
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

// Bounded reports whether both ends of the window are set.
func (r DateRange) Bounded() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return ErrInvalidProductCode
	}
	if p.Price < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e SaleEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.ProductCode) == "" {
		return ErrInvalidProductCode
	}
	if e.Qty <= 0 {
		return ErrInvalidQty
	}
	if e.Total < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Key returns the natural upsert key of the entry.
func (e SaleEntry) Key() string {
	return e.Date.ISO() + "/" + e.ProductCode
}

func (e ExpenseEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c CashEvent) Validate() error {
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if c.Type == "" {
		return errors.New("empty cash event type")
	}
	if c.Type == CashEventOpeningBalance && c.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}
