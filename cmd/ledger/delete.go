package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ledger/internal/cli"
	"ledger/internal/core"
)

func (a *app) deleteCmd() *cobra.Command {
	var recordID string

	cmd := &cobra.Command{
		Use:   "delete [index]",
		Short: "Delete an expense",
		Long: `Delete one expense, either by the # shown in 'ledger list' (its position
in the file) or by its ID with --id. IDs survive between runs only with
backends that store them (sqlite); the CSV file keeps positions only.`,
		Example: `  ledger delete 3
  ledger delete --id 01J0Z8YQ3M7W1K2C9V4B6N5T8R`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (recordID != "") {
				return errors.New("give either an index or --id")
			}
			index := -1
			if len(args) == 1 {
				i, err := strconv.Atoi(args[0])
				if err != nil || i < 0 {
					return fmt.Errorf("%w: %q", core.ErrInvalidIndex, args[0])
				}
				index = i
			}

			ctx := cmd.Context()
			session, cleanup, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var removed core.Record
			if recordID != "" {
				removed, index, err = session.Delete(ctx, recordID)
			} else {
				removed, err = session.DeleteAt(ctx, index)
			}
			if err != nil {
				return fmt.Errorf("delete expense: %w", err)
			}

			fmt.Fprintln(a.out, cli.SuccessStyle.Render(fmt.Sprintf("✓ Deleted #%d: %s %s %s on %s",
				index, removed.Category, removed.Item, removed.Amount, removed.Date)))
			return nil
		},
	}

	cmd.Flags().StringVar(&recordID, "id", "", "delete the expense with this ID")
	return cmd
}
