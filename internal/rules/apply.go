package rules

import "github.com/tally-dev/tally/internal/model"

// ApplySummary reports what a rule pass did (or would do, on dry runs).
type ApplySummary struct {
	Scanned   int
	Matched   int
	Reverted  int // rule-derived classifications whose rule no longer matches
	Unchanged int
}

// ApplyAll runs the full rule pass over the pending set and returns the
// updated transactions. Ignored transactions are never touched. For
// every other transaction:
//
//   - the first matching enabled rule sets status auto-mapped, the
//     rule's category, the matched rule ID and source=rule, unless the
//     existing classification outranks a rule (manual);
//   - a rule-derived classification whose rule no longer matches (rule
//     deleted, disabled or edited) reverts to uncategorized with
//     category, matched rule ID and source cleared;
//   - manual and AI classifications with no matching rule are preserved.
//
// The pass is idempotent: running it twice over the same inputs leaves
// the second run with no changes.
func ApplyAll(txns []model.PendingTransaction, ruleList []model.TransactionRule) ([]model.PendingTransaction, ApplySummary) {
	out := make([]model.PendingTransaction, len(txns))
	copy(out, txns)

	summary := ApplySummary{}
	for i := range out {
		txn := &out[i]
		if txn.Status == model.StatusIgnored {
			summary.Unchanged++
			continue
		}
		summary.Scanned++

		match := FirstMatch(ruleList, *txn)
		switch {
		case match != nil && model.SourceRule.Precedence() >= txn.Source.Precedence():
			txn.Status = model.StatusAutoMapped
			txn.CategoryID = match.CategoryID
			txn.MatchedRuleID = match.ID
			txn.Source = model.SourceRule
			summary.Matched++
		case match == nil && txn.Source == model.SourceRule:
			txn.Status = model.StatusUncategorized
			txn.CategoryID = ""
			txn.MatchedRuleID = ""
			txn.Source = ""
			summary.Reverted++
		default:
			// Manual/AI classification, or still uncategorized: keep.
			// Stale rule bookkeeping on a non-rule source is cleared to
			// hold the matchedRuleID iff source==rule invariant.
			if txn.Source != model.SourceRule {
				txn.MatchedRuleID = ""
			}
			summary.Unchanged++
		}
	}
	return out, summary
}

// ApplyNew tests a single newly-created rule against uncategorized
// transactions only, promoting matches to auto-mapped. Transactions a
// human or the AI already categorized are deliberately left alone.
func ApplyNew(txns []model.PendingTransaction, rule model.TransactionRule) ([]model.PendingTransaction, int) {
	out := make([]model.PendingTransaction, len(txns))
	copy(out, txns)

	matched := 0
	for i := range out {
		txn := &out[i]
		if txn.Status != model.StatusUncategorized || txn.Classified() {
			continue
		}
		if !EvalRule(rule, *txn) {
			continue
		}
		txn.Status = model.StatusAutoMapped
		txn.CategoryID = rule.CategoryID
		txn.MatchedRuleID = rule.ID
		txn.Source = model.SourceRule
		matched++
	}
	return out, matched
}
