// Package sheets stores the ledger in a Google Sheets range using the same
// four columns as the CSV file.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"ledger/internal/core"
	"ledger/internal/storage"
)

const DefaultSheetName = "Expenses"

// Options selects the spreadsheet and the credentials used to reach it.
// CredentialsJSON wins over CredentialsFile.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// valuesAPI is the slice of the Sheets values API the store needs.
type valuesAPI interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
}

type Store struct {
	api           valuesAPI
	spreadsheetID string
	sheet         string
}

// New builds a store backed by the Sheets API using service account
// credentials.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	creds, err := credentials(opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newStore(&serviceAPI{svc: svc}, opts.SpreadsheetID, opts.SheetName), nil
}

func newStore(api valuesAPI, spreadsheetID, sheet string) *Store {
	if strings.TrimSpace(sheet) == "" {
		sheet = DefaultSheetName
	}
	return &Store{api: api, spreadsheetID: spreadsheetID, sheet: sheet}
}

func credentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

func (s *Store) rangeA1() string {
	return fmt.Sprintf("%s!A:D", s.sheet)
}

func (s *Store) location() string {
	return s.spreadsheetID + "/" + s.rangeA1()
}

// Load reads the range. A sheet with no values is an empty ledger.
func (s *Store) Load(ctx context.Context) (core.Ledger, error) {
	rows, err := s.api.Get(ctx, s.spreadsheetID, s.rangeA1())
	if err != nil {
		return nil, &storage.IOError{Op: "load", Path: s.location(), Err: err}
	}
	if len(rows) == 0 {
		return core.Ledger{}, nil
	}
	if err := storage.CheckHeader(toStrings(rows[0])); err != nil {
		return nil, &storage.FormatError{Path: s.location(), Line: 1, Err: err}
	}

	l := core.Ledger{}
	for i, row := range rows[1:] {
		fields := toStrings(row)
		if len(fields) == 0 {
			continue
		}
		r, err := storage.DecodeRow(fields)
		if err != nil {
			return nil, &storage.FormatError{Path: s.location(), Line: i + 2, Err: err}
		}
		l = append(l, r)
	}
	return l, nil
}

// Save clears the range and writes header and rows as raw values.
func (s *Store) Save(ctx context.Context, l core.Ledger) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", s.location(), err)
	}
	if err := s.api.Clear(ctx, s.spreadsheetID, s.rangeA1()); err != nil {
		return &storage.IOError{Op: "save", Path: s.location(), Err: fmt.Errorf("clear range: %w", err)}
	}
	if err := s.api.Update(ctx, s.spreadsheetID, s.rangeA1(), toValues(l)); err != nil {
		return &storage.IOError{Op: "save", Path: s.location(), Err: fmt.Errorf("write values: %w", err)}
	}
	return nil
}

// toStrings converts a row of cell values to strings. Cells are not
// trimmed: the decoder trims date, category and amount itself and the item
// is kept as written. Sheets drops trailing empty cells, so short rows are
// padded back to the full width.
func toStrings(row []interface{}) []string {
	out := make([]string, 0, len(storage.Header))
	blank := true
	for _, v := range row {
		s := fmt.Sprint(v)
		if strings.TrimSpace(s) != "" {
			blank = false
		}
		out = append(out, s)
	}
	if blank {
		return nil
	}
	for len(out) < len(storage.Header) {
		out = append(out, "")
	}
	return out
}

func toValues(l core.Ledger) [][]interface{} {
	values := make([][]interface{}, 0, len(l)+1)
	header := make([]interface{}, len(storage.Header))
	for i, h := range storage.Header {
		header[i] = h
	}
	values = append(values, header)
	for _, r := range l {
		row := storage.EncodeRow(r)
		cells := make([]interface{}, len(row))
		for i, c := range row {
			cells[i] = c
		}
		values = append(values, cells)
	}
	return values
}

type serviceAPI struct {
	svc *gsheet.Service
}

func (a *serviceAPI) Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get values: %w", err)
	}
	return resp.Values, nil
}

func (a *serviceAPI) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := a.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (a *serviceAPI) Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := a.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
