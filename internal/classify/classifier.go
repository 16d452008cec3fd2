// Package classify merges the three classification sources (rules, the
// AI classifier, humans) under an explicit precedence, and provides the
// classifier implementations.
package classify

import (
	"context"

	"github.com/tally-dev/tally/internal/model"
)

// Suggestion pairs a pending transaction with a suggested category.
type Suggestion struct {
	TransactionID string `json:"transaction_id"`
	CategoryID    string `json:"category_id"`
}

// Classifier suggests categories for pending transactions. It is
// best-effort and fallible: callers treat an error or an empty result
// as "no suggestions", never as a fatal condition.
type Classifier interface {
	Suggest(ctx context.Context, txns []model.PendingTransaction, recent []model.Expense, categories []model.Category) ([]Suggestion, error)
}

// CanOverwrite reports whether a classification from source next may
// replace one from source existing: Manual > Rule > AI, and anything
// beats unclassified. Equal precedence may overwrite (e.g. a later rule
// pass refreshing a rule-derived category).
func CanOverwrite(existing, next model.CategorySource) bool {
	return next.Precedence() >= existing.Precedence()
}

// ApplySuggestions merges AI suggestions into the pending set by
// transaction ID and returns the updated set plus the number applied.
// Suggestions land only on non-ignored transactions that still lack a
// category; IDs no longer present are skipped, so a slow classifier
// response stays safe against a pending set that changed underneath.
func ApplySuggestions(txns []model.PendingTransaction, suggestions []Suggestion) ([]model.PendingTransaction, int) {
	out := make([]model.PendingTransaction, len(txns))
	copy(out, txns)

	byID := make(map[string]int, len(out))
	for i, txn := range out {
		byID[txn.ID] = i
	}

	applied := 0
	for _, sug := range suggestions {
		if sug.CategoryID == "" {
			continue
		}
		i, ok := byID[sug.TransactionID]
		if !ok {
			continue
		}
		txn := &out[i]
		if txn.Status == model.StatusIgnored || txn.Classified() {
			continue
		}
		txn.CategoryID = sug.CategoryID
		txn.Source = model.SourceAI
		txn.Status = model.StatusCategorized
		applied++
	}
	return out, applied
}
