// Package reconcile owns the lifecycle of pending transactions: import,
// classification bookkeeping, ignore/unignore, and confirmation into the
// permanent ledger.
package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Header is the CSV header for pending partitions.
const Header = "id,date,description,amount,category_id,status,matched_rule_id,source,origin,created_at"

const (
	numFields     = 10
	dateFormat    = "2006-01-02"
	colID         = 0
	colDate       = 1
	colDesc       = 2
	colAmount     = 3
	colCategory   = 4
	colStatus     = 5
	colMatchedRul = 6
	colSource     = 7
	colOrigin     = 8
	colCreatedAt  = 9
)

// pendingPartitions lists every pending partition; the set is scanned in
// this order when loading the full pending view.
var pendingPartitions = []string{
	"pending/uncategorized",
	"pending/auto-mapped",
	"pending/categorized",
	"pending/ignored",
}

// PartitionFor maps a transaction status to its store partition.
func PartitionFor(status model.TxnStatus) string {
	return "pending/" + string(status)
}

// MarshalTransaction converts a PendingTransaction to a store row.
func MarshalTransaction(t model.PendingTransaction) store.Row {
	row := make(store.Row, numFields)
	row[colID] = t.ID
	row[colDate] = t.Date.Format(dateFormat)
	row[colDesc] = t.Description
	row[colAmount] = t.Amount.StringFixed(2)
	row[colCategory] = t.CategoryID
	row[colStatus] = string(t.Status)
	row[colMatchedRul] = t.MatchedRuleID
	row[colSource] = string(t.Source)
	row[colOrigin] = t.Origin
	row[colCreatedAt] = t.CreatedAt.UTC().Format(time.RFC3339)
	return row
}

// UnmarshalTransaction converts a store row to a PendingTransaction.
func UnmarshalTransaction(row store.Row) (model.PendingTransaction, error) {
	if len(row) != numFields {
		return model.PendingTransaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	date, err := time.Parse(dateFormat, row[colDate])
	if err != nil {
		return model.PendingTransaction{}, fmt.Errorf("parsing date %q: %w", row[colDate], err)
	}
	amount, err := decimal.NewFromString(row[colAmount])
	if err != nil {
		return model.PendingTransaction{}, fmt.Errorf("parsing amount %q: %w", row[colAmount], err)
	}
	createdAt, err := time.Parse(time.RFC3339, row[colCreatedAt])
	if err != nil {
		return model.PendingTransaction{}, fmt.Errorf("parsing created_at %q: %w", row[colCreatedAt], err)
	}

	return model.PendingTransaction{
		ID:            row[colID],
		Date:          date,
		Description:   row[colDesc],
		Amount:        amount,
		CategoryID:    row[colCategory],
		Status:        model.TxnStatus(row[colStatus]),
		MatchedRuleID: row[colMatchedRul],
		Source:        model.CategorySource(row[colSource]),
		Origin:        row[colOrigin],
		CreatedAt:     createdAt,
	}, nil
}
