package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Housing       Category = "Housing"
	Utilities     Category = "Utilities"
	Entertainment Category = "Entertainment"
	Healthcare    Category = "Healthcare"
	Other         Category = "Other"
)

// DateLayout is the calendar date format used at every boundary.
const DateLayout = "2006-01-02"

type (
	Category string

	// Date is a calendar date stored as UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Record is one expense entry. ID is assigned when the record enters a
	// session and is not part of the persisted file format.
	Record struct {
		ID       string
		Date     Date
		Category Category
		Item     string
		Amount   Money
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidItem     = errors.New("invalid item")
	ErrInvalidIndex    = errors.New("invalid index")
	ErrRecordNotFound  = errors.New("record not found")
)

var categories = []Category{Food, Transport, Housing, Utilities, Entertainment, Healthcare, Other}

// ValidationError reports which field of a candidate record was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory matches s against the fixed set, ignoring case and
// surrounding whitespace, and returns the canonical spelling.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping the calendar date as seen in
// t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts YYYY-MM-DD, optionally followed by a clock time which
// is discarded.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, ErrInvalidDate
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the rules every stored record must satisfy. The item is
// free text and may be empty, but must already be in NormalizeItem form so
// it survives a CSV round trip unchanged.
func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	if !r.Category.Valid() {
		return &ValidationError{Field: "category", Err: ErrInvalidCategory}
	}
	if NormalizeItem(r.Item) != r.Item {
		return &ValidationError{Field: "item", Err: ErrInvalidItem}
	}
	if err := r.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	return nil
}

// NormalizeItem turns CRLF and lone CR into LF and drops every other
// control character except tab. Invalid UTF-8 becomes U+FFFD. Surrounding
// blanks are kept.
func NormalizeItem(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\r':
			return '\n'
		case r == '\t' || r == '\n':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
}

// ParseRecord builds a candidate record from user input. The first field
// that fails to parse is reported as a ValidationError.
func ParseRecord(date, category, item, amount string) (Record, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Record{}, &ValidationError{Field: "date", Err: err}
	}
	c, err := ParseCategory(category)
	if err != nil {
		return Record{}, &ValidationError{Field: "category", Err: err}
	}
	m, err := ParseMoney(amount)
	if err != nil {
		return Record{}, &ValidationError{Field: "amount", Err: err}
	}
	return Record{Date: d, Category: c, Item: strings.TrimSpace(NormalizeItem(item)), Amount: m}, nil
}
