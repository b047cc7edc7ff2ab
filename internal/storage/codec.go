package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"ledger/internal/core"
)

// Header is the first row of every persisted ledger.
var Header = []string{"Date", "Category", "Item", "Amount"}

const bom = "\ufeff"

// EncodeRow renders a record in column order.
func EncodeRow(r core.Record) []string {
	return []string{r.Date.String(), r.Category.String(), r.Item, r.Amount.String()}
}

// DecodeRow parses one data row. The result carries no ID.
func DecodeRow(fields []string) (core.Record, error) {
	if len(fields) != len(Header) {
		return core.Record{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), len(Header))
	}
	date, err := core.ParseDate(fields[0])
	if err != nil {
		return core.Record{}, &core.ValidationError{Field: "date", Err: err}
	}
	cat, err := core.ParseCategory(fields[1])
	if err != nil {
		return core.Record{}, &core.ValidationError{Field: "category", Err: err}
	}
	amount, err := core.ParseMoney(fields[3])
	if err != nil {
		return core.Record{}, &core.ValidationError{Field: "amount", Err: err}
	}
	r := core.Record{Date: date, Category: cat, Item: core.NormalizeItem(fields[2]), Amount: amount}
	return r, r.Validate()
}

// CheckHeader reports whether fields match Header, ignoring case,
// surrounding blanks and a leading byte order mark.
func CheckHeader(fields []string) error {
	if len(fields) != len(Header) {
		return fmt.Errorf("%w: %q", ErrHeaderMismatch, strings.Join(fields, ","))
	}
	for i, want := range Header {
		got := strings.TrimSpace(fields[i])
		if i == 0 {
			got = strings.TrimPrefix(got, bom)
		}
		if !strings.EqualFold(got, want) {
			return fmt.Errorf("%w: %q", ErrHeaderMismatch, strings.Join(fields, ","))
		}
	}
	return nil
}

// ReadCSV decodes a ledger. Empty input is an empty ledger; a header
// alone is too. Records come back without IDs.
func ReadCSV(r io.Reader) (core.Ledger, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return core.Ledger{}, nil
	}
	if err != nil {
		return nil, csvReadError(err)
	}
	if err := CheckHeader(header); err != nil {
		return nil, &FormatError{Line: 1, Err: err}
	}

	l := core.Ledger{}
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return l, nil
		}
		if err != nil {
			return nil, csvReadError(err)
		}
		line, _ := cr.FieldPos(0)
		rec, err := DecodeRow(fields)
		if err != nil {
			return nil, &FormatError{Line: line, Err: err}
		}
		l = append(l, rec)
	}
}

// WriteCSV encodes the header followed by every record. Invalid records
// are refused before anything is written, since they would not read back
// unchanged.
func WriteCSV(w io.Writer, l core.Ledger) error {
	if err := l.Validate(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range l {
		if err := cw.Write(EncodeRow(r)); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvReadError turns parse errors into FormatError and passes reader
// failures through untouched.
func csvReadError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &FormatError{Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("read csv: %w", err)
}
