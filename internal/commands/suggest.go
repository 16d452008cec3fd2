package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/classify"
	"github.com/tally-dev/tally/internal/model"
)

func newSuggestCommand(envFn func() (*env, error)) *cobra.Command {
	var offline bool
	var apply bool

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest categories for uncategorized transactions",
		Long: "Asks the configured classifier for category suggestions. Suggestions\n" +
			"land only on transactions that nothing else has classified yet; rule\n" +
			"and manual classifications are never overwritten.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn()
			if err != nil {
				return err
			}
			txns, err := e.pending.Load()
			if err != nil {
				return err
			}

			var unclassified []model.PendingTransaction
			for _, txn := range txns {
				if txn.Status != model.StatusIgnored && !txn.Classified() {
					unclassified = append(unclassified, txn)
				}
			}
			out := cmd.OutOrStdout()
			if len(unclassified) == 0 {
				fmt.Fprintln(out, "Nothing to suggest for")
				return nil
			}

			// Recent confirmed expenses give the model this user's own
			// labeling to imitate.
			recent, err := e.ledger.Year(time.Now().Year())
			if err != nil {
				return err
			}

			classifier := e.classifier(offline)
			suggestions, err := classifier.Suggest(cmd.Context(), unclassified, recent, e.cfg.ModelCategories())
			if err != nil {
				return fmt.Errorf("classifier: %w", err)
			}
			if len(suggestions) == 0 {
				fmt.Fprintln(out, "No suggestions")
				return nil
			}

			if !apply {
				for _, s := range suggestions {
					fmt.Fprintf(out, "%s -> %s\n", s.TransactionID, s.CategoryID)
				}
				fmt.Fprintf(out, "%d suggestion(s); re-run with --apply to accept\n", len(suggestions))
				return nil
			}

			applied, err := e.pending.ApplySuggestions(suggestions)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Applied %d of %d suggestion(s)\n", applied, len(suggestions))
			e.autoCommit(fmt.Sprintf("suggest: applied %d classification(s)", applied))
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "use the keyword heuristic instead of the AI model")
	cmd.Flags().BoolVar(&apply, "apply", false, "apply suggestions instead of printing them")

	return cmd
}

// classifier picks the classifier for a suggest run. The heuristic is
// the fallback when the AI classifier is disabled or explicitly skipped.
func (e *env) classifier(offline bool) classify.Classifier {
	if offline || !e.cfg.Classifier.Enabled {
		return classify.NewHeuristic(e.cfg.KeywordDict())
	}
	return classify.NewGemini(e.cfg.Classifier.Model)
}
