package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"25000", 25000, true},
		{" 25000 ", 25000, true},
		{"25.000", 25000, true},
		{"1,250,000", 1250000, true},
		{"", 0, false},
		{"0", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"12abc", 0, false},
		{"2.5", 0, false},
		{"12.34", 0, false},
		{"1.250,000", 0, false},
		{"1234.567", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("case %d: got %d, want %d", i, got, tc.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{950, "950"},
		{25000, "25,000"},
		{1250000, "1,250,000"},
		{-50000, "-50,000"},
	}
	for i, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.want {
			t.Fatalf("case %d: got %s, want %s", i, got, tc.want)
		}
	}
}
