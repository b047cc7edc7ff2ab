package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ledger/internal/cli"
	"ledger/internal/core"
)

func (a *app) addCmd() *cobra.Command {
	var date, category, item, amount string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Long: `Append one expense to the ledger and save it.

The date defaults to today. Categories are fixed: Food, Transport, Housing,
Utilities, Entertainment, Healthcare, Other (any case).`,
		Example: `  ledger add --category food --item "Bread" --amount 2.40
  ledger add --date 2024-01-05 --category Transport --amount 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if date == "" {
				date = core.DateOf(time.Now()).String()
			}
			rec, err := core.ParseRecord(date, category, item, amount)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			session, cleanup, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			added, index, err := session.Add(ctx, rec)
			if err != nil {
				return fmt.Errorf("add expense: %w", err)
			}

			fmt.Fprintln(a.out, cli.SuccessStyle.Render(fmt.Sprintf("✓ Added %s %s on %s", added.Category, added.Amount, added.Date)))
			if added.Item != "" {
				fmt.Fprintf(a.out, "  Item: %s\n", added.Item)
			}
			fmt.Fprintln(a.out, cli.SubtleStyle.Render(fmt.Sprintf("  #%d  ID: %s", index, added.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "expense date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&category, "category", "", "expense category")
	cmd.Flags().StringVar(&item, "item", "", "what was bought")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 12.50")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
