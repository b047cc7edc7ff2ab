package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"10.5", 1050, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"0.004", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1e3", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
		{"100000000000", 1e13, true},
		{"100000000000.01", 0, false},
		{"92233720368547758.07", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %d (err=%v)", tc.in, got, err)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		1:      "0.01",
		10:     "0.10",
		1000:   "10.00",
		123456: "1234.56",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("7,25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Cents != 725 || m.String() != "7.25" {
		t.Fatalf("got %+v (%s)", m, m)
	}
}

func TestTotalOfLargestAmountsStaysPositive(t *testing.T) {
	big := Money{Cents: MaxAmountCents}
	l := Ledger{rec(1, Food, "a", big.Cents), rec(2, Food, "b", big.Cents), rec(3, Food, "c", 1)}
	if err := l.Validate(); err != nil {
		t.Fatalf("largest amount must be valid: %v", err)
	}
	if got := Total(l); got.Cents != 2*MaxAmountCents+1 {
		t.Fatalf("Total = %s", got)
	}
	if err := (Money{Cents: MaxAmountCents + 1}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
