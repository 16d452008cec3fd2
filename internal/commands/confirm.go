package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/reconcile"
)

func newConfirmCommand(envFn func() (*env, error)) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "confirm [txn-id...]",
		Short: "Turn pending transactions into ledger expenses",
		Long: "Moves categorized pending transactions into the yearly ledger. A\n" +
			"batch of named transactions is all-or-nothing: if any is missing a\n" +
			"category or otherwise not ready, nothing is confirmed. With --all,\n" +
			"every ready transaction is confirmed and the rest stay queued.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("pass transaction IDs or --all, not both")
			}
			e, err := envFn()
			if err != nil {
				return err
			}

			var summary reconcile.ConfirmSummary
			if all {
				summary, err = e.pending.ConfirmAll()
			} else {
				summary, err = e.pending.Confirm(args)
			}

			var verr *reconcile.ValidationError
			if errors.As(err, &verr) {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Nothing confirmed; these transactions are not ready:")
				for _, txnID := range verr.IDs {
					fmt.Fprintf(out, "  %s\n", txnID)
				}
				return err
			}
			if err != nil {
				return err
			}

			if summary.Confirmed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing ready to confirm")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Confirmed %d transaction(s) into the ledger\n", summary.Confirmed)
			e.autoCommit(fmt.Sprintf("confirm: %d expense(s)", summary.Confirmed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "confirm every non-ignored pending transaction")

	return cmd
}
