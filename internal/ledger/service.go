package ledger

import (
	"fmt"
	"sort"

	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Service reads and writes the permanent expense ledger. Expenses live
// in one partition per calendar year, derived from the year embedded in
// the expense ID.
type Service struct {
	store store.Store
}

// NewService creates a ledger Service over a record store.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Partition returns the ledger partition name for a year.
func Partition(year int) string {
	return fmt.Sprintf("ledger/%04d", year)
}

// Append writes expenses to their yearly partitions, grouped so each
// partition is touched once. IDs already present in a partition are
// skipped, which makes re-running a partially failed confirm batch
// idempotent: the expense ID is the pending transaction's ID, so a
// retry cannot produce duplicates.
func (s *Service) Append(expenses []model.Expense) (int, error) {
	byYear := make(map[int][]model.Expense)
	var years []int
	for _, e := range expenses {
		year, err := id.Year(e.ID)
		if err != nil {
			return 0, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		if _, seen := byYear[year]; !seen {
			years = append(years, year)
		}
		byYear[year] = append(byYear[year], e)
	}
	sort.Ints(years)

	written := 0
	for _, year := range years {
		partition := Partition(year)
		existing, err := s.store.GetRows(partition)
		if err != nil {
			return written, fmt.Errorf("reading %s: %w", partition, err)
		}
		present := make(map[string]bool, len(existing))
		for _, row := range existing {
			present[row.ID()] = true
		}

		var rows []store.Row
		for _, e := range byYear[year] {
			if present[e.ID] {
				continue
			}
			rows = append(rows, MarshalExpense(e))
		}
		if err := s.store.AppendRows(partition, rows); err != nil {
			return written, fmt.Errorf("appending to %s: %w", partition, err)
		}
		written += len(rows)
	}
	return written, nil
}

// Year returns all expenses in a year's partition.
func (s *Service) Year(year int) ([]model.Expense, error) {
	partition := Partition(year)
	rows, err := s.store.GetRows(partition)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", partition, err)
	}
	expenses := make([]model.Expense, 0, len(rows))
	for i, row := range rows {
		e, err := UnmarshalExpense(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", partition, i+2, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

// Update rewrites an expense in place; the partition comes from the
// year embedded in the ID.
func (s *Service) Update(e model.Expense) error {
	year, err := id.Year(e.ID)
	if err != nil {
		return err
	}
	if err := s.store.UpdateRow(Partition(year), e.ID, MarshalExpense(e)); err != nil {
		return fmt.Errorf("updating expense %s: %w", e.ID, err)
	}
	return nil
}

// Delete removes an expense by ID.
func (s *Service) Delete(expenseID string) error {
	year, err := id.Year(expenseID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRow(Partition(year), expenseID); err != nil {
		return fmt.Errorf("deleting expense %s: %w", expenseID, err)
	}
	return nil
}
