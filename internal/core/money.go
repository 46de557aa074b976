// Package core holds the domain model: money arithmetic, expense splitting,
// and the entities the ledger, registry, and aggregator operate on.
//
// All monetary quantities are integer minor units (cents) with an attached
// currency code; binary floats never enter any calculation.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an exact monetary quantity: minor units plus an ISO 4217 code.
type Money struct {
	Cents    int64
	Currency string
}

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrCurrencyMismatch  = errors.New("incompatible currency")
	ErrInvalidPercentage = errors.New("invalid percentage")
)

// MaxCents is the largest magnitude ParseMoney accepts. It keeps
// Cents * 10000 within int64 so MultiplyByPercent cannot overflow.
const MaxCents = (1<<63 - 1) / 10000

// ParseMoney converts a decimal string to Money with the given currency.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// performs half-up rounding on the third decimal place. Negative values are
// accepted; callers that need positivity check it themselves. Magnitudes
// above MaxCents are rejected.
//
// Examples:
//
//	ParseMoney("12.34", "USD")  -> {1234, "USD"}
//	ParseMoney("12,345", "EUR") -> {1235, "EUR"} (rounds up)
func ParseMoney(s, currency string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
		if fracPart == "" {
			return Money{}, ErrInvalidAmount
		}
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if iv > MaxCents/100 {
		return Money{}, ErrInvalidAmount
	}

	// Take the first two fractional digits; half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if cents > MaxCents {
		return Money{}, ErrInvalidAmount
	}
	if neg {
		cents = -cents
	}
	return Money{Cents: cents, Currency: currency}, nil
}

// MustMoney is a fixture helper; it panics on a malformed amount.
func MustMoney(s, currency string) Money {
	m, err := ParseMoney(s, currency)
	if err != nil {
		panic(fmt.Sprintf("core: bad money literal %q: %v", s, err))
	}
	return m
}

// Add returns m + other, failing when the currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Cents: m.Cents + other.Cents, Currency: m.Currency}, nil
}

// Sub returns m - other, failing when the currencies differ.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Cents: m.Cents - other.Cents, Currency: m.Currency}, nil
}

// MultiplyByPercent scales m by a percentage expressed in basis points
// (1% = 100 bp) and rounds half-to-even at the minor unit. The fixed rounding
// policy keeps repeated splits reproducible. Cents must stay within
// ±MaxCents, which ParseMoney guarantees.
func (m Money) MultiplyByPercent(bp int64) Money {
	num := m.Cents * bp
	q := num / 10000
	r := num % 10000
	if r < 0 {
		r = -r
	}
	const half = int64(5000)
	switch {
	case r > half:
		if num > 0 {
			q++
		} else {
			q--
		}
	case r == half:
		// Ties go to the even neighbour.
		if q%2 != 0 {
			if num > 0 {
				q++
			} else {
				q--
			}
		}
	}
	return Money{Cents: q, Currency: m.Currency}
}

// Cmp returns -1, 0, or 1. Ordering is total per currency only; comparing
// across currencies is a programmer error and panics.
func (m Money) Cmp(other Money) int {
	if m.Currency != other.Currency {
		panic("core: comparing money of different currencies")
	}
	switch {
	case m.Cents < other.Cents:
		return -1
	case m.Cents > other.Cents:
		return 1
	default:
		return 0
	}
}

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }

// Decimal renders the canonical decimal string used on the wire ("12.34").
func (m Money) Decimal() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// String is for logs only; use Decimal for anything machine-read.
func (m Money) String() string {
	return m.Decimal() + " " + m.Currency
}

// Validate rejects non-positive amounts; used by entities that require a
// strictly positive value (expense totals).
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParsePercent converts a decimal percentage string ("33.33") to basis
// points. Values outside [0, 100] are rejected.
func ParsePercent(s string) (int64, error) {
	m, err := ParseMoney(s, "")
	if err != nil {
		return 0, ErrInvalidPercentage
	}
	// Cents of a percentage read as money are exactly basis points.
	bp := m.Cents
	if bp < 0 || bp > 10000 {
		return 0, ErrInvalidPercentage
	}
	return bp, nil
}

// FormatPercent renders basis points as a decimal percentage string.
func FormatPercent(bp int64) string {
	return Money{Cents: bp}.Decimal()
}
