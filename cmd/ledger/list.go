package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ledger/internal/cli"
	"ledger/internal/core"
)

func (a *app) listCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, most recent first",
		Long: `Display every expense, most recent first.

The # column is the record's position in the file. Pass it to
'ledger delete' to remove that record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session, cleanup, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			l, err := session.Ledger(ctx)
			if err != nil {
				return fmt.Errorf("list expenses: %w", err)
			}
			if l.Len() == 0 {
				fmt.Fprintln(a.out, cli.InfoStyle.Render("No expenses recorded. Use 'ledger add' to create one."))
				return nil
			}

			order := newestFirst(l)
			if limit > 0 && limit < len(order) {
				order = order[:limit]
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("#"),
				cli.HeaderStyle.Render("Date"),
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Item"),
				cli.HeaderStyle.Render("Amount"),
				cli.HeaderStyle.Render("ID"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 3),
				strings.Repeat("-", 10),
				strings.Repeat("-", 13),
				strings.Repeat("-", 20),
				strings.Repeat("-", 10),
				strings.Repeat("-", 26))
			for _, i := range order {
				r := l[i]
				item := r.Item
				if item == "" {
					item = cli.SubtleStyle.Render("(none)")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%10s\t%s\n", i, r.Date, r.Category, item, r.Amount, cli.SubtleStyle.Render(r.ID))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "\n%s %s\n", cli.BoldStyle.Render("Total:"), core.Total(l))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n expenses (0 for all)")
	return cmd
}

// newestFirst returns load-order positions sorted by date descending,
// later entries first within a day.
func newestFirst(l core.Ledger) []int {
	order := make([]int, len(l))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		a, b := l[order[x]], l[order[y]]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.After(b.Date.Time)
		}
		return order[x] > order[y]
	})
	return order
}
