// Package ledger persists confirmed expenses into year-partitioned
// store partitions.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Header is the CSV header for a ledger partition.
const Header = "id,date,category_id,amount,description,created_at,updated_at"

const (
	numFields    = 7
	dateFormat   = "2006-01-02"
	colID        = 0
	colDate      = 1
	colCategory  = 2
	colAmount    = 3
	colDesc      = 4
	colCreatedAt = 5
	colUpdatedAt = 6
)

// MarshalExpense converts an Expense to a store row.
func MarshalExpense(e model.Expense) store.Row {
	row := make(store.Row, numFields)
	row[colID] = e.ID
	row[colDate] = e.Date.Format(dateFormat)
	row[colCategory] = e.CategoryID
	row[colAmount] = e.Amount.StringFixed(2)
	row[colDesc] = e.Description
	row[colCreatedAt] = e.CreatedAt.UTC().Format(time.RFC3339)
	row[colUpdatedAt] = e.UpdatedAt.UTC().Format(time.RFC3339)
	return row
}

// UnmarshalExpense converts a store row to an Expense.
func UnmarshalExpense(row store.Row) (model.Expense, error) {
	if len(row) != numFields {
		return model.Expense{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	date, err := time.Parse(dateFormat, row[colDate])
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing date %q: %w", row[colDate], err)
	}
	amount, err := decimal.NewFromString(row[colAmount])
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing amount %q: %w", row[colAmount], err)
	}
	createdAt, err := time.Parse(time.RFC3339, row[colCreatedAt])
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing created_at %q: %w", row[colCreatedAt], err)
	}
	updatedAt, err := time.Parse(time.RFC3339, row[colUpdatedAt])
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing updated_at %q: %w", row[colUpdatedAt], err)
	}

	return model.Expense{
		ID:          row[colID],
		Date:        date,
		CategoryID:  row[colCategory],
		Amount:      amount,
		Description: row[colDesc],
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}
