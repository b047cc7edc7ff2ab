package core

import (
	"fmt"
	"sort"
	"time"
)

type (
	CategoryAmount struct {
		Category Category
		Amount   Money
	}

	MonthAmount struct {
		Year   int
		Month  time.Month
		Label  string
		Amount Money
	}

	// Summary bundles the dashboard projections of a ledger.
	Summary struct {
		Count      int
		Total      Money
		ByCategory []CategoryAmount
		ByMonth    []MonthAmount
	}
)

// MonthLabel formats a year and month as YYYY-MM.
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// Total sums every amount. An empty ledger totals zero.
func Total(l Ledger) Money {
	var total Money
	for _, r := range l {
		total = total.Add(r.Amount)
	}
	return total
}

// ByCategory sums amounts per category. Categories without records are
// absent from the map.
func ByCategory(l Ledger) map[Category]Money {
	out := make(map[Category]Money)
	for _, r := range l {
		out[r.Category] = out[r.Category].Add(r.Amount)
	}
	return out
}

// CategoryBreakdown is ByCategory ordered like Categories().
func CategoryBreakdown(l Ledger) []CategoryAmount {
	totals := ByCategory(l)
	out := make([]CategoryAmount, 0, len(totals))
	for _, c := range categories {
		if m, ok := totals[c]; ok {
			out = append(out, CategoryAmount{Category: c, Amount: m})
		}
	}
	return out
}

// ByMonth sums amounts per calendar month in ascending order.
func ByMonth(l Ledger) []MonthAmount {
	type key struct {
		year  int
		month time.Month
	}
	totals := make(map[key]Money)
	for _, r := range l {
		k := key{r.Date.Year(), r.Date.Month()}
		totals[k] = totals[k].Add(r.Amount)
	}
	out := make([]MonthAmount, 0, len(totals))
	for k, m := range totals {
		out = append(out, MonthAmount{Year: k.year, Month: k.month, Label: MonthLabel(k.year, k.month), Amount: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

func Summarize(l Ledger) Summary {
	return Summary{
		Count:      len(l),
		Total:      Total(l),
		ByCategory: CategoryBreakdown(l),
		ByMonth:    ByMonth(l),
	}
}
