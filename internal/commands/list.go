package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/model"
)

func newListCommand(envFn func() (*env, error)) *cobra.Command {
	var status string
	var year int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending transactions or confirmed expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn()
			if err != nil {
				return err
			}
			if year != 0 {
				return listExpenses(cmd, e, year)
			}
			return listPending(cmd, e, model.TxnStatus(status))
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (uncategorized, auto-mapped, categorized, ignored)")
	cmd.Flags().IntVar(&year, "year", 0, "list confirmed expenses for a year instead")

	return cmd
}

func listPending(cmd *cobra.Command, e *env, status model.TxnStatus) error {
	txns, err := e.pending.Load()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tSTATUS\tCATEGORY\tSOURCE\tDESCRIPTION")
	shown := 0
	for _, txn := range txns {
		if status != "" && txn.Status != status {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			txn.ID,
			txn.Date.Format("2006-01-02"),
			txn.Amount.StringFixed(2),
			txn.Status,
			txn.CategoryID,
			txn.Source,
			txn.Description,
		)
		shown++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d transaction(s)\n", shown)
	return nil
}

func listExpenses(cmd *cobra.Command, e *env, year int) error {
	expenses, err := e.ledger.Year(year)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	var total decimal.Decimal
	for _, exp := range expenses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			exp.ID,
			exp.Date.Format("2006-01-02"),
			exp.Amount.StringFixed(2),
			exp.CategoryID,
			exp.Description,
		)
		total = total.Add(exp.Amount)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d expense(s) in %d, total %s\n", len(expenses), year, total.StringFixed(2))
	return nil
}
