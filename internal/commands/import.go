package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/reconcile"
)

func newImportCommand(envFn func() (*env, error)) *cobra.Command {
	var origin string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a bank statement CSV into the pending queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn()
			if err != nil {
				return err
			}
			raw, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if origin == "" {
				origin = filepath.Base(args[0])
			}
			ruleList, err := e.loadRules()
			if err != nil {
				return err
			}

			summary, err := e.pending.ImportCSV(raw, reconcile.ImportOptions{
				Origin:     origin,
				Categories: e.cfg.ModelCategories(),
				Keywords:   e.cfg.KeywordDict(),
				Rules:      ruleList,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d of %d row(s) (%d auto-mapped)\n",
				summary.RowsImported, summary.RowsSeen, summary.AutoMapped)
			if summary.RowsSkipped > 0 {
				fmt.Fprintf(out, "Skipped %d row(s) with unusable amounts or descriptions\n", summary.RowsSkipped)
			}
			if summary.DatesDefaulted > 0 {
				fmt.Fprintf(out, "Defaulted %d unparseable date(s) to today\n", summary.DatesDefaulted)
			}

			e.autoCommit(fmt.Sprintf("import: %s (%d rows)", origin, summary.RowsImported))
			return nil
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "origin label stored on each transaction (default: file name)")

	return cmd
}
