package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRulesCommand(envFn func() (*env, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage and apply categorization rules",
	}
	cmd.AddCommand(newRulesApplyCommand(envFn))
	cmd.AddCommand(newRulesListCommand(envFn))
	return cmd
}

func newRulesApplyCommand(envFn func() (*env, error)) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Re-run all rules over the pending queue",
		Long: "Re-runs every enabled rule over all non-ignored pending transactions.\n" +
			"Rule matches overwrite AI classifications but never manual ones, and\n" +
			"rule-derived classifications whose rule no longer matches are reverted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn()
			if err != nil {
				return err
			}
			ruleList, err := e.loadRules()
			if err != nil {
				return err
			}

			summary, err := e.pending.ApplyRules(ruleList, dryRun)
			if err != nil {
				return err
			}

			prefix := ""
			if dryRun {
				prefix = "[dry-run] "
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%sScanned %d: %d matched, %d reverted, %d unchanged\n",
				prefix, summary.Scanned, summary.Matched, summary.Reverted, summary.Unchanged)

			if !dryRun {
				e.autoCommit(fmt.Sprintf("rules: apply (%d matched, %d reverted)", summary.Matched, summary.Reverted))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")

	return cmd
}

func newRulesListCommand(envFn func() (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn()
			if err != nil {
				return err
			}
			ruleList, err := e.loadRules()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(ruleList) == 0 {
				fmt.Fprintln(out, "No rules configured")
				return nil
			}
			for _, rule := range ruleList {
				state := "enabled"
				if !rule.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(out, "%-12s %-30s -> %-15s %s (%d condition(s), %s)\n",
					rule.ID, rule.Name, rule.CategoryID, state, len(rule.Conditions), rule.Logic)
			}
			return nil
		},
	}
}
