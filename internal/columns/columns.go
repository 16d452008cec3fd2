// Package columns assigns logical roles (date, description, amount,
// category) to CSV header columns using name heuristics with positional
// fallbacks.
package columns

import "strings"

// Roles holds the resolved column index per logical role. Category is
// optional and -1 when the file has no category column.
type Roles struct {
	Date        int
	Description int
	Amount      int
	Category    int
}

// Substring tables per role, in priority order. Matched against
// lower-cased, trimmed header names.
var (
	dateNames        = []string{"date", "transaction date", "posting date", "txn date", "time"}
	descriptionNames = []string{"description", "narrative", "particulars", "merchant", "payee", "memo", "narration"}
	amountNames      = []string{"amount", "debit", "credit", "withdrawal", "value"}
	categoryNames    = []string{"category", "type", "tag"}
)

// Infer resolves column roles for a header row. Name matching runs
// first (first substring wins per role, columns scanned left to right,
// each column claimed at most once), then the description falls back to
// the first unclaimed column when at least 3 columns exist, then
// positional defaults fill remaining required roles: column 0 = date,
// column 1 = description, last column = amount. Inference is
// deterministic and fails only when a required role stays out of range,
// which needs fewer than 2 columns.
func Infer(headers []string) (Roles, bool) {
	n := len(headers)
	lowered := make([]string, n)
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	claimed := make(map[int]bool, 4)
	date := matchRole(lowered, dateNames, claimed)
	description := matchRole(lowered, descriptionNames, claimed)
	amount := matchRole(lowered, amountNames, claimed)
	category := matchRole(lowered, categoryNames, claimed)

	if description < 0 && n >= 3 {
		for i := 0; i < n; i++ {
			if !claimed[i] {
				description = i
				claimed[i] = true
				break
			}
		}
	}

	if date < 0 {
		date = 0
	}
	if description < 0 {
		description = 1
	}
	if amount < 0 {
		amount = n - 1
	}

	if date >= n || description >= n || amount >= n || n < 2 {
		return Roles{}, false
	}
	return Roles{Date: date, Description: description, Amount: amount, Category: category}, true
}

// matchRole returns the first unclaimed column containing any of the
// role's substrings, claiming it, or -1.
func matchRole(lowered []string, names []string, claimed map[int]bool) int {
	for _, name := range names {
		for i, header := range lowered {
			if claimed[i] || header == "" {
				continue
			}
			if strings.Contains(header, name) {
				claimed[i] = true
				return i
			}
		}
	}
	return -1
}
