package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ledger/internal/cli"
	"ledger/internal/core"
)

const barWidth = 30

// summaryDoc is the machine-readable form of a summary. Amounts are
// decimal strings so nothing is lost to float rounding.
type summaryDoc struct {
	Count      int             `json:"count" yaml:"count"`
	Total      string          `json:"total" yaml:"total"`
	ByCategory []categoryTotal `json:"by_category" yaml:"by_category"`
	ByMonth    []monthTotal    `json:"by_month" yaml:"by_month"`
}

type categoryTotal struct {
	Category string `json:"category" yaml:"category"`
	Amount   string `json:"amount" yaml:"amount"`
}

type monthTotal struct {
	Month  string `json:"month" yaml:"month"`
	Amount string `json:"amount" yaml:"amount"`
}

func newSummaryDoc(s core.Summary) summaryDoc {
	doc := summaryDoc{
		Count:      s.Count,
		Total:      s.Total.String(),
		ByCategory: make([]categoryTotal, 0, len(s.ByCategory)),
		ByMonth:    make([]monthTotal, 0, len(s.ByMonth)),
	}
	for _, c := range s.ByCategory {
		doc.ByCategory = append(doc.ByCategory, categoryTotal{Category: c.Category.String(), Amount: c.Amount.String()})
	}
	for _, m := range s.ByMonth {
		doc.ByMonth = append(doc.ByMonth, monthTotal{Month: m.Label, Amount: m.Amount.String()})
	}
	return doc
}

func (a *app) summaryCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals by category and by month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "text" && format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
			}

			ctx := cmd.Context()
			session, cleanup, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sum, _, err := session.Summary(ctx)
			if err != nil {
				return fmt.Errorf("summarise ledger: %w", err)
			}

			switch format {
			case "json":
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(newSummaryDoc(sum))
			case "yaml":
				enc := yaml.NewEncoder(a.out)
				enc.SetIndent(2)
				if err := enc.Encode(newSummaryDoc(sum)); err != nil {
					return err
				}
				return enc.Close()
			default:
				return writeSummaryText(a.out, sum)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json, yaml)")
	return cmd
}

func writeSummaryText(out io.Writer, sum core.Summary) error {
	fmt.Fprintln(out, cli.TitleStyle.Render("Expense summary"))
	fmt.Fprintf(out, "%s %s  %s\n", cli.BoldStyle.Render("Total:"), sum.Total,
		cli.SubtleStyle.Render(fmt.Sprintf("(%d expenses)", sum.Count)))
	if sum.Count == 0 {
		return nil
	}

	var maxCat int64
	for _, c := range sum.ByCategory {
		maxCat = max(maxCat, c.Amount.Cents)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.HeaderStyle.Render("By category"))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range sum.ByCategory {
		fmt.Fprintf(w, "%s\t%10s\t%s\n", c.Category, c.Amount, bar(c.Amount.Cents, maxCat))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	var maxMonth int64
	for _, m := range sum.ByMonth {
		maxMonth = max(maxMonth, m.Amount.Cents)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.HeaderStyle.Render("By month"))
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, m := range sum.ByMonth {
		fmt.Fprintf(w, "%s\t%10s\t%s\n", m.Label, m.Amount, bar(m.Amount.Cents, maxMonth))
	}
	return w.Flush()
}

// bar renders cents as a run of blocks scaled against max. Any non-zero
// amount gets at least one block.
func bar(cents, max int64) string {
	if max <= 0 || cents <= 0 {
		return ""
	}
	n := int((cents*barWidth + max/2) / max)
	if n < 1 {
		n = 1
	}
	return cli.BarStyle.Render(strings.Repeat("█", n))
}
