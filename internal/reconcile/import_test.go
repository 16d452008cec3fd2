package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/normalize"
)

func groceriesImportRule() model.TransactionRule {
	return model.TransactionRule{
		ID:         "r1",
		Name:       "Groceries",
		CategoryID: "groceries",
		Enabled:    true,
		Conditions: []model.RuleCondition{{
			ID:    "r1-c1",
			Field: model.FieldDescription,
			Match: model.MatchContains,
			Value: "trader joe",
		}},
	}
}

func TestImportCSV(t *testing.T) {
	s := newTestService(t)
	input := "Date,Description,Amount\n" +
		"03/02/2024,\"TRADER JOE'S #123\",45.23\n" +
		"03/03/2024,UBER TRIP,-12.40\n" +
		"garbage,COFFEE SHOP,3.50\n" +
		"03/05/2024,ZERO CHARGE,0.00\n"

	summary, err := s.ImportCSV(input, ImportOptions{
		Origin: "chase.csv",
		Rules:  []model.TransactionRule{groceriesImportRule()},
		Keywords: []normalize.CategoryKeywords{
			{CategoryID: "transport", Keywords: []string{"uber", "lyft"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, ImportSummary{
		RowsSeen:       4,
		RowsImported:   3,
		RowsSkipped:    1, // zero amount
		DatesDefaulted: 1, // "garbage"
		AutoMapped:     2,
	}, summary)

	txns, err := s.Load()
	require.NoError(t, err)
	require.Len(t, txns, 3)

	byDesc := make(map[string]model.PendingTransaction)
	for _, txn := range txns {
		byDesc[txn.Description] = txn
	}

	tj := byDesc["TRADER JOES #123"] // quotes stripped by normalization
	assert.Equal(t, model.StatusAutoMapped, tj.Status)
	assert.Equal(t, "groceries", tj.CategoryID)
	assert.Equal(t, "r1", tj.MatchedRuleID)
	assert.Equal(t, model.SourceRule, tj.Source)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), tj.Date)
	assert.Equal(t, "chase.csv", tj.Origin)

	uber := byDesc["UBER TRIP"]
	assert.Equal(t, model.StatusAutoMapped, uber.Status)
	assert.Equal(t, "transport", uber.CategoryID)
	assert.Equal(t, model.SourceAI, uber.Source)
	assert.True(t, uber.Amount.Equal(decimal.RequireFromString("12.40")), "negatives are stored absolute")

	coffee := byDesc["COFFEE SHOP"]
	assert.Equal(t, model.StatusUncategorized, coffee.Status)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), coffee.Date, "bad date defaults to today")
}

func TestImportCSV_CategoryColumn(t *testing.T) {
	s := newTestService(t)
	input := "Date,Description,Amount,Category\n" +
		"2024-03-02,WHOLE FOODS,80.00,Groceries\n" +
		"2024-03-03,UBER TRIP,12.00,BANKCODE-17\n"

	summary, err := s.ImportCSV(input, ImportOptions{
		Origin: "export.csv",
		Categories: []model.Category{
			{ID: "groceries", Name: "Groceries"},
			{ID: "transport", Name: "Transport"},
		},
		Keywords: []normalize.CategoryKeywords{
			{CategoryID: "transport", Keywords: []string{"uber"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.RowsImported)
	assert.Equal(t, 2, summary.AutoMapped)

	txns, err := s.Load()
	require.NoError(t, err)
	require.Len(t, txns, 2)

	byDesc := make(map[string]model.PendingTransaction)
	for _, txn := range txns {
		byDesc[txn.Description] = txn
	}

	// Known category label counts as the user's own choice.
	wf := byDesc["WHOLE FOODS"]
	assert.Equal(t, "groceries", wf.CategoryID)
	assert.Equal(t, model.SourceManual, wf.Source)

	// Unknown label is discarded; the keyword fallback takes over.
	uber := byDesc["UBER TRIP"]
	assert.Equal(t, "transport", uber.CategoryID)
	assert.Equal(t, model.SourceAI, uber.Source)
}

func TestImportCSV_HeaderOnly(t *testing.T) {
	s := newTestService(t)
	summary, err := s.ImportCSV("Date,Description,Amount\n", ImportOptions{Origin: "empty.csv"})
	require.NoError(t, err)
	assert.Zero(t, summary.RowsSeen)

	txns, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestImportCSV_EmptyInput(t *testing.T) {
	s := newTestService(t)
	_, err := s.ImportCSV("", ImportOptions{})
	assert.ErrorContains(t, err, "empty input")
}

func TestImportCSV_UninferrableHeader(t *testing.T) {
	s := newTestService(t)
	_, err := s.ImportCSV("x\n1\n", ImportOptions{})
	assert.ErrorContains(t, err, "cannot infer columns")
}

func TestImportCSV_ShortRows(t *testing.T) {
	s := newTestService(t)
	input := "Date,Description,Amount\n" +
		"2024-03-02,LONELY CELL\n" + // no amount cell
		"2024-03-03,FULL ROW,10.00\n"

	summary, err := s.ImportCSV(input, ImportOptions{Origin: "ragged.csv"})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.RowsSeen)
	assert.Equal(t, 1, summary.RowsImported)
	assert.Equal(t, 1, summary.RowsSkipped)
}
