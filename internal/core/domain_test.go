package core

import (
	"testing"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2026-02-01", true},
		{" 2026-02-01 ", true},
		{"2026-2-1", false},
		{"01-02-2026", false},
		{"", false},
		{"not-a-date", false},
	}
	for i, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if tc.ok && d.ISO() != "2026-02-01" {
			t.Fatalf("case %d round trip: got %s", i, d.ISO())
		}
	}
}

func TestDateRangeContains(t *testing.T) {
	d := NewDate(2026, 2, 15)
	cases := []struct {
		r    DateRange
		want bool
	}{
		{DateRange{}, true},
		{DateRange{Start: NewDate(2026, 2, 1)}, true},
		{DateRange{End: NewDate(2026, 2, 28)}, true},
		{DateRange{Start: NewDate(2026, 2, 15), End: NewDate(2026, 2, 15)}, true},
		{DateRange{Start: NewDate(2026, 2, 16)}, false},
		{DateRange{End: NewDate(2026, 2, 14)}, false},
	}
	for i, tc := range cases {
		if got := tc.r.Contains(d); got != tc.want {
			t.Fatalf("case %d: got %v, want %v", i, got, tc.want)
		}
	}
}

func TestSaleEntryValidate(t *testing.T) {
	good := SaleEntry{Date: NewDate(2026, 2, 1), ProductCode: "LAT", Qty: 2, Total: 50000}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []SaleEntry{
		{ProductCode: "LAT", Qty: 1, Total: 1},                          // zero date
		{Date: NewDate(2026, 2, 1), Qty: 1, Total: 1},                   // empty code
		{Date: NewDate(2026, 2, 1), ProductCode: "LAT", Qty: 0},         // zero qty
		{Date: NewDate(2026, 2, 1), ProductCode: "LAT", Qty: -3},        // negative qty
		{Date: NewDate(2026, 2, 1), ProductCode: "LAT", Qty: 1, Total: -1}, // negative total
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseEntryValidate(t *testing.T) {
	good := ExpenseEntry{Date: NewDate(2026, 2, 1), Category: "rent", Description: "stall rent", Amount: 20000}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []ExpenseEntry{
		{Category: "rent", Amount: 1},
		{Date: NewDate(2026, 2, 1), Category: "", Amount: 1},
		{Date: NewDate(2026, 2, 1), Category: "rent", Amount: 0},
		{Date: NewDate(2026, 2, 1), Category: "rent", Amount: -500},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSaleEntryKey(t *testing.T) {
	a := SaleEntry{Date: NewDate(2026, 1, 1), ProductCode: "LAT"}
	b := SaleEntry{Date: NewDate(2026, 1, 1), ProductCode: "LAT", Qty: 5}
	c := SaleEntry{Date: NewDate(2026, 1, 2), ProductCode: "LAT"}
	if a.Key() != b.Key() {
		t.Fatalf("same date+code must share a key")
	}
	if a.Key() == c.Key() {
		t.Fatalf("different dates must not share a key")
	}
}
