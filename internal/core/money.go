// Package core holds the domain model for cash-flow and debt-payoff
// simulations: calendar dates, cent-precise money, and the request and
// result types both simulators operate on.
//
// This file contains the Money type. All monetary arithmetic happens in
// integer cents; the single rounding point is the half-up conversion from
// fractional input (decimal strings, interest fractions) to cents.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in integer cents. The zero value is zero cents.
type Money struct {
	Cents int64
}

// MoneyFromFloat converts a float amount in whole currency units to cents
// with half-up rounding (away from zero on an exact half cent).
func MoneyFromFloat(v float64) Money {
	return Money{Cents: roundHalfUp(v * 100)}
}

// roundHalfUp rounds to the nearest integer, ties away from zero.
func roundHalfUp(v float64) int64 {
	if v < 0 {
		return -int64(math.Floor(-v + 0.5))
	}
	return int64(math.Floor(v + 0.5))
}

// ParseMoney converts a decimal string to cents. A leading sign is
// accepted; the third decimal digit and beyond round half-up.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234
//	ParseMoney("-0.5")   -> -50
//	ParseMoney("12.345") -> 1235 (rounds up)
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// JSON numbers may carry an exponent; hand those to the float path.
	if strings.ContainsAny(s, "eE") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Money{}, ErrInvalidAmount
		}
		return MoneyFromFloat(v), nil
	}
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 || s == "" || s == "." {
		return Money{}, ErrInvalidAmount
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
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
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
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool {
	return m.Cents > 0
}

// LessThan reports whether m is strictly below o.
func (m Money) LessThan(o Money) bool {
	return m.Cents < o.Cents
}

// AtMost reports whether m does not exceed o.
func (m Money) AtMost(o Money) bool {
	return m.Cents <= o.Cents
}

// String renders the amount with exactly two decimals, e.g. "2500.00".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + twoDigits(cents%100)
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// MarshalJSON renders the amount as a bare JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number (or quoted decimal string).
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MonthlyInterest returns one month of interest on a balance at the given
// APR percentage, rounded half-up to the cent: balance × (apr/100) / 12.
func MonthlyInterest(balance Money, aprPercent float64) Money {
	return Money{Cents: roundHalfUp(float64(balance.Cents) * aprPercent / 1200)}
}
