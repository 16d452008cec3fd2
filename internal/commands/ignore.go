package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIgnoreCommand(envFn func() (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "ignore <txn-id>...",
		Short: "Park transactions so they are skipped by rules, suggestions and confirm",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn()
			if err != nil {
				return err
			}
			for _, txnID := range args {
				if err := e.pending.Ignore(txnID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ignored %d transaction(s)\n", len(args))
			e.autoCommit(fmt.Sprintf("ignore: %d transaction(s)", len(args)))
			return nil
		},
	}
}

func newUnignoreCommand(envFn func() (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "unignore <txn-id>...",
		Short: "Return ignored transactions to the uncategorized queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn()
			if err != nil {
				return err
			}
			for _, txnID := range args {
				if err := e.pending.Unignore(txnID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unignored %d transaction(s)\n", len(args))
			e.autoCommit(fmt.Sprintf("unignore: %d transaction(s)", len(args)))
			return nil
		},
	}
}

func newDeleteCommand(envFn func() (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <txn-id>...",
		Short: "Remove pending transactions outright",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn()
			if err != nil {
				return err
			}
			for _, txnID := range args {
				if err := e.pending.Delete(txnID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d transaction(s)\n", len(args))
			e.autoCommit(fmt.Sprintf("delete: %d transaction(s)", len(args)))
			return nil
		},
	}
}
