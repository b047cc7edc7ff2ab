package core

import (
	"errors"
	"testing"
	"time"
)

func TestCategoriesFixedOrder(t *testing.T) {
	want := []Category{Food, Transport, Housing, Utilities, Entertainment, Healthcare, Other}
	got := Categories()
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %s want %s", i, got[i], want[i])
		}
	}
	got[0] = "Mutated"
	if Categories()[0] != Food {
		t.Fatal("Categories must return a copy")
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"Food", Food, true},
		{" transport ", Transport, true},
		{"HEALTHCARE", Healthcare, true},
		{"Groceries", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseCategory(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidCategory) {
			t.Errorf("ParseCategory(%q) expected ErrInvalidCategory, got %v", tc.in, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-01-05", NewDate(2024, time.January, 5), true},
		{"2024-02-29 13:45:00", NewDate(2024, time.February, 29), true},
		{"2024-03-01T23:30:00Z", NewDate(2024, time.March, 1), true},
		{"2023-02-29", Date{}, false},
		{"05/01/2024", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want.Time) {
				t.Errorf("ParseDate(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestDateString(t *testing.T) {
	if got := NewDate(2024, time.July, 4).String(); got != "2024-07-04" {
		t.Fatalf("got %q", got)
	}
}

func TestRecordValidate(t *testing.T) {
	valid := Record{
		Date:     NewDate(2024, time.January, 5),
		Category: Food,
		Item:     "Bread",
		Amount:   Money{Cents: 1000},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	empty := valid
	empty.Item = ""
	if err := empty.Validate(); err != nil {
		t.Fatalf("empty item must be accepted: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Record)
		field  string
		target error
	}{
		{"zero date", func(r *Record) { r.Date = Date{} }, "date", ErrInvalidDate},
		{"unknown category", func(r *Record) { r.Category = "Groceries" }, "category", ErrInvalidCategory},
		{"zero amount", func(r *Record) { r.Amount = Money{} }, "amount", ErrInvalidAmount},
		{"negative amount", func(r *Record) { r.Amount = Money{Cents: -5} }, "amount", ErrInvalidAmount},
		{"amount above limit", func(r *Record) { r.Amount = Money{Cents: MaxAmountCents + 1} }, "amount", ErrInvalidAmount},
		{"carriage return in item", func(r *Record) { r.Item = "Lunch\r\nsalad" }, "item", ErrInvalidItem},
		{"control character in item", func(r *Record) { r.Item = "a\x00b" }, "item", ErrInvalidItem},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			err := r.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("field = %q, want %q", ve.Field, tc.field)
			}
			if !errors.Is(err, tc.target) {
				t.Errorf("expected %v, got %v", tc.target, err)
			}
		})
	}
}

func TestParseRecord(t *testing.T) {
	r, err := ParseRecord("2024-03-15", "food", "  Bread ", "10,5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Date != NewDate(2024, time.March, 15) || r.Category != Food || r.Item != "Bread" || r.Amount.Cents != 1050 {
		t.Fatalf("unexpected record %+v", r)
	}

	cases := []struct {
		date, category, amount string
		field                  string
		sentinel               error
	}{
		{"15/03/2024", "Food", "1", "date", ErrInvalidDate},
		{"2024-03-15", "Groceries", "1", "category", ErrInvalidCategory},
		{"2024-03-15", "Food", "-1", "amount", ErrInvalidAmount},
		{"2024-03-15", "Food", "0.001", "amount", ErrInvalidAmount},
	}
	for _, tc := range cases {
		_, err := ParseRecord(tc.date, tc.category, "x", tc.amount)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field || !errors.Is(err, tc.sentinel) {
			t.Errorf("ParseRecord(%q, %q, %q) = %v, want %s field error", tc.date, tc.category, tc.amount, err, tc.field)
		}
	}
}

func TestNormalizeItem(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Bread", "Bread"},
		{"  spaced  ", "  spaced  "},
		{"Lunch\r\nsalad", "Lunch\nsalad"},
		{"old\rmac", "old\nmac"},
		{"tab\tkept", "tab\tkept"},
		{"bell\a\x7fgone", "bellgone"},
		{"two\n\nlines", "two\n\nlines"},
	}
	for _, tc := range cases {
		in, want := tc.in, tc.want
		got := NormalizeItem(in)
		if got != want {
			t.Errorf("NormalizeItem(%q) = %q, want %q", in, got, want)
		}
		if NormalizeItem(got) != got {
			t.Errorf("NormalizeItem(%q) is not stable", got)
		}
	}

	r, err := ParseRecord("2024-03-15", "Food", " Lunch\r\nsalad\r\n", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Item != "Lunch\nsalad" {
		t.Fatalf("item = %q", r.Item)
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("parsed record must validate: %v", err)
	}
}
