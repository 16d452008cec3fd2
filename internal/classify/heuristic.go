package classify

import (
	"context"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/normalize"
)

// maxEditDistance bounds the fuzzy keyword match: "wallmart" still hits
// "walmart", "bookstore" does not hit "store".
const maxEditDistance = 1

// Heuristic is an offline classifier built on the category keyword
// dictionary: exact substring match first, then a bounded edit-distance
// match over description tokens for near-miss merchant spellings.
type Heuristic struct {
	dict []normalize.CategoryKeywords
}

// NewHeuristic creates a Heuristic over an ordered keyword dictionary.
func NewHeuristic(dict []normalize.CategoryKeywords) *Heuristic {
	return &Heuristic{dict: dict}
}

// Suggest returns one suggestion per transaction whose description
// matches a keyword. It never fails.
func (h *Heuristic) Suggest(_ context.Context, txns []model.PendingTransaction, _ []model.Expense, _ []model.Category) ([]Suggestion, error) {
	var out []Suggestion
	for _, txn := range txns {
		if categoryID := h.match(txn.Description); categoryID != "" {
			out = append(out, Suggestion{TransactionID: txn.ID, CategoryID: categoryID})
		}
	}
	return out, nil
}

func (h *Heuristic) match(description string) string {
	if categoryID := normalize.SuggestCategory(description, h.dict); categoryID != "" {
		return categoryID
	}

	tokens := strings.Fields(strings.ToLower(description))
	for _, entry := range h.dict {
		for _, kw := range entry.Keywords {
			kw = strings.ToLower(kw)
			if len(kw) < 4 {
				// Short keywords produce spurious fuzzy hits.
				continue
			}
			for _, token := range tokens {
				if editDistanceWithin(token, kw, maxEditDistance) {
					return entry.CategoryID
				}
			}
		}
	}
	return ""
}

func editDistanceWithin(a, b string, max int) bool {
	if a == b {
		return true
	}
	diff := len(a) - len(b)
	if diff < -max || diff > max {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= max
}
