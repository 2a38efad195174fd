package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecurringService(t *testing.T) (*RecurringService, *memDB, *fakeConverter) {
	t.Helper()
	db := txDB(t)
	mem := newMemDB()
	conv := &fakeConverter{rates: map[string]string{"EUR>USD": "1.1"}}
	exp := NewExpenseService(db, memManager{mem}, conv, logging.Discard())
	return NewRecurringService(db, memManager{mem}, exp, logging.Discard()), mem, conv
}

func TestRecurringService_CRUD(t *testing.T) {
	svc, mem, _ := newRecurringService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, 1, models.NewRecurring{
		Amount: 999, Description: "Gym", Category: "Health", Frequency: "monthly", NextDueDate: "2024-06-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", r.Currency)

	list, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, 1, r.ID))
	assert.False(t, mem.recurring[r.ID].Active, "soft delete keeps the row")

	list, err = svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, svc.Delete(ctx, 1, r.ID), common.ErrorNotFound)
}

func TestRecurringService_CreateValidation(t *testing.T) {
	svc, _, _ := newRecurringService(t)
	_, err := svc.Create(context.Background(), 1, models.NewRecurring{Amount: 1, Description: "x", Category: "y", Frequency: "hourly", NextDueDate: "2024-01-01"})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "frequency", ve.Field)
}

func TestRecurringService_MaterializeDue(t *testing.T) {
	svc, mem, conv := newRecurringService(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	mem.recurring[1] = &models.RecurringExpense{ID: 1, UserID: 1, Amount: 1000, Currency: "EUR", Description: "Phone",
		Category: "Utilities", Frequency: "weekly", NextDueDate: time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), Active: true}
	mem.recurring[2] = &models.RecurringExpense{ID: 2, UserID: 2, Amount: 500, Currency: "USD", Description: "Music",
		Category: "Entertainment", Frequency: "monthly", NextDueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), Active: true}
	mem.recurring[3] = &models.RecurringExpense{ID: 3, UserID: 1, Amount: 500, Currency: "USD", Description: "Old",
		Category: "Other", Frequency: "daily", NextDueDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Active: false}
	mem.seq = 10

	n, err := svc.MaterializeDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, conv.calls)

	require.Len(t, mem.expenses, 1)
	for _, e := range mem.expenses {
		assert.True(t, e.IsRecurring)
		require.NotNil(t, e.RecurringID)
		assert.Equal(t, int64(1), *e.RecurringID)
		assert.Equal(t, int64(1100), e.Amount)
		assert.Equal(t, int64(1000), e.OriginalAmount)
	}

	assert.Equal(t, time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC), mem.recurring[1].NextDueDate)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), mem.recurring[2].NextDueDate, "not due yet")

	n, err = svc.MaterializeDue(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n, "second run finds nothing due")
}

func TestRecurringService_MaterializeSkipsFailures(t *testing.T) {
	svc, mem, conv := newRecurringService(t)
	conv.err = common.ErrRateUnavailable
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mem.recurring[1] = &models.RecurringExpense{ID: 1, UserID: 1, Amount: 1000, Currency: "EUR", Description: "Phone",
		Category: "Utilities", Frequency: "monthly", NextDueDate: due, Active: true}

	n, err := svc.MaterializeDue(context.Background(), due.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, due, mem.recurring[1].NextDueDate, "left due for the next run")
}
