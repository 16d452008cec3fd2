package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tally-dev/tally/internal/columns"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/normalize"
	"github.com/tally-dev/tally/internal/rules"
)

// ImportSummary reports what an import run did with the input rows.
type ImportSummary struct {
	RowsSeen       int
	RowsImported   int
	RowsSkipped    int
	DatesDefaulted int
	AutoMapped     int
}

// ImportOptions carries the classification inputs for an import run.
// Categories resolves an explicit CSV category column against known
// category IDs and names; Keywords drives the fallback suggestion;
// Rules is the enabled rule list evaluated against each new row.
type ImportOptions struct {
	Origin     string
	Categories []model.Category
	Keywords   []normalize.CategoryKeywords
	Rules      []model.TransactionRule
}

// ImportCSV parses a raw bank-export CSV, normalizes each row into a
// pending transaction and persists the batch. Import is lenient: rows
// with unusable amounts are skipped, unparseable dates default to
// today, and a malformed line never aborts the run.
func (s *Service) ImportCSV(raw string, opts ImportOptions) (ImportSummary, error) {
	var summary ImportSummary

	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return summary, fmt.Errorf("empty input")
	}
	if err != nil {
		return summary, fmt.Errorf("reading header: %w", err)
	}

	roles, ok := columns.Infer(header)
	if !ok {
		return summary, fmt.Errorf("cannot infer columns from header %q", strings.Join(header, ","))
	}

	now := s.now()
	var batch []model.PendingTransaction
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			summary.RowsSeen++
			summary.RowsSkipped++
			continue
		}
		summary.RowsSeen++

		txn, defaulted, ok := s.buildTransaction(record, roles, opts, now)
		if !ok {
			summary.RowsSkipped++
			continue
		}
		if defaulted {
			summary.DatesDefaulted++
		}
		if txn.Status == model.StatusAutoMapped {
			summary.AutoMapped++
		}
		summary.RowsImported++
		batch = append(batch, txn)
	}

	if err := s.appendBatch(batch); err != nil {
		return summary, err
	}

	s.log.Info().
		Str("origin", opts.Origin).
		Int("seen", summary.RowsSeen).
		Int("imported", summary.RowsImported).
		Int("skipped", summary.RowsSkipped).
		Int("auto_mapped", summary.AutoMapped).
		Msg("imported transactions")
	return summary, nil
}

func (s *Service) buildTransaction(record []string, roles columns.Roles, opts ImportOptions, now time.Time) (model.PendingTransaction, bool, bool) {
	cell := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return record[i]
	}

	amount, ok := normalize.Amount(cell(roles.Amount))
	if !ok {
		return model.PendingTransaction{}, false, false
	}
	date, defaulted := normalize.Date(cell(roles.Date), now)
	description := normalize.Description(cell(roles.Description))
	if description == "" {
		return model.PendingTransaction{}, false, false
	}

	txn := model.PendingTransaction{
		ID:          s.newID(date),
		Date:        date,
		Description: description,
		Amount:      amount,
		Status:      model.StatusUncategorized,
		Origin:      opts.Origin,
		CreatedAt:   now,
	}

	// Classification at import time. An explicit category column is the
	// user's own data and counts as manual; a rule match beats the
	// keyword heuristic.
	if categoryID := resolveCategory(cell(roles.Category), opts.Categories); categoryID != "" {
		txn.CategoryID = categoryID
		txn.Source = model.SourceManual
		txn.Status = model.StatusAutoMapped
	} else if rule := rules.FirstMatch(opts.Rules, txn); rule != nil {
		txn.CategoryID = rule.CategoryID
		txn.MatchedRuleID = rule.ID
		txn.Source = model.SourceRule
		txn.Status = model.StatusAutoMapped
	} else if categoryID := normalize.SuggestCategory(description, opts.Keywords); categoryID != "" {
		txn.CategoryID = categoryID
		txn.Source = model.SourceAI
		txn.Status = model.StatusAutoMapped
	}

	return txn, defaulted, true
}

// resolveCategory matches a CSV category cell against known category IDs
// and names, case-insensitively. Unknown values are discarded so a
// bank's own labels do not leak into the category set.
func resolveCategory(cell string, categories []model.Category) string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return ""
	}
	for _, c := range categories {
		if strings.EqualFold(cell, c.ID) || strings.EqualFold(cell, c.Name) {
			return c.ID
		}
	}
	return ""
}
