package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCategorizeCommand(envFn func() (*env, error)) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "categorize <txn-id> [category-id]",
		Short: "Manually set a transaction's category",
		Long: "Assigns a category by hand. Manual picks outrank rule and AI\n" +
			"classifications and are never overwritten by either.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn()
			if err != nil {
				return err
			}
			txnID := args[0]

			categoryID := ""
			if len(args) == 2 {
				categoryID = args[1]
			}
			if clear && categoryID != "" {
				return fmt.Errorf("--clear takes no category argument")
			}
			if !clear && categoryID == "" {
				return fmt.Errorf("category-id required (or use --clear)")
			}

			if categoryID != "" && !knownCategory(e, categoryID) {
				return fmt.Errorf("unknown category %q", categoryID)
			}

			if err := e.pending.SetCategory(txnID, categoryID); err != nil {
				return err
			}

			if categoryID == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared category on %s\n", txnID)
				e.autoCommit(fmt.Sprintf("categorize: clear %s", txnID))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s -> %s\n", txnID, categoryID)
				e.autoCommit(fmt.Sprintf("categorize: %s -> %s", txnID, categoryID))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "remove the current classification")

	return cmd
}

func knownCategory(e *env, categoryID string) bool {
	for _, c := range e.cfg.Categories {
		if c.ID == categoryID {
			return true
		}
	}
	return false
}
