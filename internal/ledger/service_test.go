package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(store.NewFileStore(t.TempDir(), map[string]string{"ledger": Header}))
}

func expense(id, date, amount string) model.Expense {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return model.Expense{
		ID:          id,
		Date:        d,
		CategoryID:  "groceries",
		Amount:      decimal.RequireFromString(amount),
		Description: "test expense",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestAppend_GroupsByYear(t *testing.T) {
	svc := newTestService(t)

	written, err := svc.Append([]model.Expense{
		expense("2024-aaaa0001", "2024-03-01", "45.20"),
		expense("2023-bbbb0002", "2023-12-30", "18.00"),
		expense("2024-cccc0003", "2024-03-02", "7.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	in2024, err := svc.Year(2024)
	require.NoError(t, err)
	assert.Len(t, in2024, 2)

	in2023, err := svc.Year(2023)
	require.NoError(t, err)
	require.Len(t, in2023, 1)
	assert.Equal(t, "2023-bbbb0002", in2023[0].ID)
}

func TestAppend_IdempotentOnRetry(t *testing.T) {
	svc := newTestService(t)
	batch := []model.Expense{
		expense("2024-aaaa0001", "2024-03-01", "45.20"),
		expense("2024-bbbb0002", "2024-03-02", "18.00"),
	}

	written, err := svc.Append(batch)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	// Retrying the same batch (as after a partial confirm failure)
	// writes nothing new.
	written, err = svc.Append(batch)
	require.NoError(t, err)
	assert.Zero(t, written)

	expenses, err := svc.Year(2024)
	require.NoError(t, err)
	assert.Len(t, expenses, 2)
}

func TestAppend_RejectsMalformedID(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Append([]model.Expense{expense("bogus", "2024-03-01", "1.00")})
	assert.Error(t, err)
}

func TestUpdate(t *testing.T) {
	svc := newTestService(t)
	e := expense("2024-aaaa0001", "2024-03-01", "45.20")
	_, err := svc.Append([]model.Expense{e})
	require.NoError(t, err)

	e.Amount = decimal.RequireFromString("50.00")
	e.Description = "corrected"
	require.NoError(t, svc.Update(e))

	got, err := svc.Year(2024)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, "corrected", got[0].Description)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Append([]model.Expense{expense("2024-aaaa0001", "2024-03-01", "45.20")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete("2024-aaaa0001"))

	got, err := svc.Year(2024)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMarshalRoundTrip(t *testing.T) {
	e := expense("2024-aaaa0001", "2024-03-01", "45.20")
	got, err := UnmarshalExpense(MarshalExpense(e))
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.True(t, got.Amount.Equal(e.Amount))
	assert.Equal(t, e.Date, got.Date)
	assert.Equal(t, e.CategoryID, got.CategoryID)
}
