package http

import (
	"errors"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/storage"
)

var templateFuncs = template.FuncMap{
	"money": func(m core.Money) string { return m.String() },
}

// sanitizeInput folds line endings to LF, removes other control characters
// except tab and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(core.NormalizeItem(s))
}

// parseIndex reads a non-negative position. Anything else is reported as
// core.ErrInvalidIndex.
func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 0 {
		return 0, core.ErrInvalidIndex
	}
	return i, nil
}

// statusFor maps ledger errors onto response codes and a short message
// safe to show to the user.
func statusFor(err error) (int, string) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, validationMessage(ve)
	case errors.Is(err, core.ErrInvalidIndex):
		return http.StatusNotFound, "Index not found."
	case errors.Is(err, core.ErrRecordNotFound):
		return http.StatusNotFound, "Expense not found."
	case storage.IsIOError(err), storage.IsFormatError(err):
		return http.StatusInternalServerError, "Could not access the ledger file."
	default:
		return http.StatusInternalServerError, "Something went wrong."
	}
}

func validationMessage(ve *core.ValidationError) string {
	switch ve.Field {
	case "date":
		return "Date must be in the format YYYY-MM-DD."
	case "category":
		return "Please choose one of the listed categories."
	case "item":
		return "Item contains characters that cannot be stored."
	case "amount":
		return "Amount must be a positive number with at most two decimals."
	default:
		return "Invalid " + ve.Field + "."
	}
}

// transactionRow is one line of the transaction list. Index is the position
// in load order, which is what delete-by-index expects.
type transactionRow struct {
	Index    int
	ID       string
	Date     string
	Category string
	Item     string
	Amount   string
}

// mostRecentFirst orders the ledger by date descending. Records on the same
// day keep reverse insertion order.
func mostRecentFirst(l core.Ledger) []transactionRow {
	rows := make([]transactionRow, len(l))
	for i, r := range l {
		rows[i] = transactionRow{
			Index:    i,
			ID:       r.ID,
			Date:     r.Date.String(),
			Category: r.Category.String(),
			Item:     r.Item,
			Amount:   r.Amount.String(),
		}
	}
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Date != rows[b].Date {
			return rows[a].Date > rows[b].Date
		}
		return rows[a].Index > rows[b].Index
	})
	return rows
}

type bar struct {
	Label  string
	Amount string
	Width  int
}

// barWidth scales cents against max as a rounded percentage. Non-zero
// amounts stay visible.
func barWidth(cents, max int64) int {
	if max <= 0 || cents <= 0 {
		return 0
	}
	width := int((cents*100 + max/2) / max)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

type summaryView struct {
	Count      int
	Total      string
	Categories []bar
	Months     []bar
	// category with the largest total, empty when nothing was spent
	TopCategory string
}

func newSummaryView(s core.Summary) summaryView {
	v := summaryView{Count: s.Count, Total: s.Total.String()}

	var maxCat int64
	for _, c := range s.ByCategory {
		if c.Amount.Cents > maxCat {
			maxCat = c.Amount.Cents
			v.TopCategory = c.Category.String()
		}
	}
	for _, c := range s.ByCategory {
		v.Categories = append(v.Categories, bar{
			Label:  c.Category.String(),
			Amount: c.Amount.String(),
			Width:  barWidth(c.Amount.Cents, maxCat),
		})
	}

	var maxMonth int64
	for _, m := range s.ByMonth {
		if m.Amount.Cents > maxMonth {
			maxMonth = m.Amount.Cents
		}
	}
	for _, m := range s.ByMonth {
		v.Months = append(v.Months, bar{
			Label:  m.Label,
			Amount: m.Amount.String(),
			Width:  barWidth(m.Amount.Cents, maxMonth),
		})
	}
	return v
}

// summaryJSON is the /api/summary payload. Amounts are decimal strings so
// no precision is lost on the client.
type summaryJSON struct {
	Count      int               `json:"count"`
	Total      string            `json:"total"`
	ByCategory []amountJSON      `json:"by_category"`
	ByMonth    []monthAmountJSON `json:"by_month"`
}

type amountJSON struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type monthAmountJSON struct {
	Month  string `json:"month"`
	Amount string `json:"amount"`
}

func newSummaryJSON(s core.Summary) summaryJSON {
	out := summaryJSON{
		Count:      s.Count,
		Total:      s.Total.String(),
		ByCategory: make([]amountJSON, 0, len(s.ByCategory)),
		ByMonth:    make([]monthAmountJSON, 0, len(s.ByMonth)),
	}
	for _, c := range s.ByCategory {
		out.ByCategory = append(out.ByCategory, amountJSON{Category: c.Category.String(), Amount: c.Amount.String()})
	}
	for _, m := range s.ByMonth {
		out.ByMonth = append(out.ByMonth, monthAmountJSON{Month: m.Label, Amount: m.Amount.String()})
	}
	return out
}
