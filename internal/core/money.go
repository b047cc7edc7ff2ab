package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmountCents bounds a single record (one hundred billion). Totals over
// any realistic number of records stay far from int64 overflow.
const MaxAmountCents int64 = 1e13

var maxCents = decimal.NewFromInt(MaxAmountCents)

// ParseDecimalToCents converts a plain decimal string to cents.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Digits past
// the second decimal place are rounded half-up. Signs, exponents and
// anything that does not round to at least one cent or exceeds
// MaxAmountCents are rejected with ErrInvalidAmount.
//
//	ParseDecimalToCents("12.34")  -> 1234
//	ParseDecimalToCents("12,345") -> 1235
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return 0, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	c := cents.IntPart()
	if c <= 0 {
		return 0, ErrInvalidAmount
	}
	return c, nil
}

// ParseMoney is ParseDecimalToCents wrapped in a Money.
func ParseMoney(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// Decimal returns the amount as an exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two fractional digits and no symbol,
// which is also the persisted representation.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}
