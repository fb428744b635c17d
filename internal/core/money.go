// Package core holds the domain types of the ledger engine.
//
// This file contains helpers for parsing and formatting whole-unit
// amounts. All amounts in the system are integers in the smallest whole
// currency unit; there are no fractional amounts anywhere.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a user-supplied amount string to a positive
// integer amount. A thousands separator (dot or comma) is tolerated,
// but only where it actually groups digits in threes; "2.5" is not a
// sloppy 25. Returns ErrInvalidAmount for empty input, signs,
// non-digits, misplaced separators or zero.
//
// Examples:
//
//	ParseAmount("25000")  -> 25000, nil
//	ParseAmount("25.000") -> 25000, nil
//	ParseAmount("2.5")    -> 0, ErrInvalidAmount
//	ParseAmount("-5")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}

	digits, err := stripGrouping(s)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// stripGrouping removes a thousands separator, requiring one consistent
// separator character with a leading group of 1-3 digits and every
// following group exactly 3.
func stripGrouping(s string) (string, error) {
	var sep rune
	for _, r := range s {
		if r == '.' || r == ',' {
			sep = r
			break
		}
	}
	if sep == 0 {
		for _, r := range s {
			if !unicode.IsDigit(r) {
				return "", ErrInvalidAmount
			}
		}
		return s, nil
	}

	groups := strings.Split(s, string(sep))
	for i, g := range groups {
		if i == 0 && (len(g) < 1 || len(g) > 3) {
			return "", ErrInvalidAmount
		}
		if i > 0 && len(g) != 3 {
			return "", ErrInvalidAmount
		}
		for _, r := range g {
			if !unicode.IsDigit(r) {
				return "", ErrInvalidAmount
			}
		}
	}
	return strings.Join(groups, ""), nil
}

// FormatAmount renders an amount with comma thousands separators for
// display purposes (reports, exports). Calculations always use the raw
// integer value.
func FormatAmount(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
