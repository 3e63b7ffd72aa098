// Package money provides integer-cent currency arithmetic for the fund
// ledger. Amounts are stored in cents to avoid floating-point drift;
// use cents for all calculations and convert to units only for display.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidAmount indicates a malformed or non-positive amount.
var ErrInvalidAmount = errors.New("money: invalid amount")

// Money is a currency amount in cents.
type Money int64

// MaxSplittable is the largest amount percent arithmetic can allocate
// without overflowing int64 cents.
const MaxSplittable Money = (1<<63 - 1) / 100

// FromCents wraps a raw cent value.
func FromCents(c int64) Money {
	return Money(c)
}

// Cents returns the raw cent value.
func (m Money) Cents() int64 {
	return int64(m)
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m > 0
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return m + o
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return m - o
}

// Units returns the amount in whole currency units as a float64 for
// display purposes only.
func (m Money) Units() float64 {
	return float64(m) / 100.0
}

// String formats the amount as a plain decimal, e.g. "1234.50".
func (m Money) String() string {
	sign := ""
	c := int64(m)
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Splittable reports whether percent arithmetic on m stays within
// int64. Callers must check this before SplitPercent.
func (m Money) Splittable() bool {
	return m > 0 && m <= MaxSplittable
}

// SplitPercent allocates pct percent of m, rounded half-up, and returns
// the allocated share together with the exact remainder. The two parts
// always sum back to m; only the first share is rounded, the second is
// derived, so no cent is ever created or lost. Amounts above
// MaxSplittable overflow the multiply; gate with Splittable first.
func (m Money) SplitPercent(pct int) (share, remainder Money) {
	s := Money((int64(m)*int64(pct) + 50) / 100)
	return s, m - s
}

// ParseDecimal converts a decimal string to Money with half-up rounding
// on the third decimal place. Both dot and comma separators are
// accepted. Negative and zero amounts are rejected.
func ParseDecimal(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return Money(cents), nil
}

// ValidPercent reports whether p is a usable split percentage.
func ValidPercent(p int) bool {
	return p >= 0 && p <= 100
}
