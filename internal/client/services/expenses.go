package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/pending"
)

const (
	expensesPath = "/api/expenses"
	statsPath    = "/api/stats"
)

type ExpenseService struct {
	base
	res resource[models.Expense]
}

func NewExpenseService(d Deps) *ExpenseService {
	return &ExpenseService{
		base: newBase(d, "expenses"),
		res: resource[models.Expense]{
			listPath:     expensesPath,
			createPath:   expensesPath,
			key:          func(e models.Expense) string { return idKey(e.ID) },
			fromMutation: expenseFromMutation,
		},
	}
}

func expenseFromMutation(m models.QueuedMutation) models.Expense {
	var e models.Expense
	_ = json.Unmarshal(m.Data, &e)
	e.ID = -m.Timestamp
	e.OriginalAmount = e.Amount
	e.CreatedAt = m.EnqueuedAt().UTC().Format("2006-01-02T15:04:05Z07:00")
	return e
}

// matches applies the list filter to a local record the way the server
// applies it to stored ones.
func matches(f models.ExpenseFilter, e models.Expense) bool {
	d := e.Day()
	if f.Start != "" && d < f.Start[:min(len(f.Start), 10)] {
		return false
	}
	if f.End != "" && d > f.End[:min(len(f.End), 10)] {
		return false
	}
	return f.Category == "" || f.Category == e.Category
}

func (s *ExpenseService) List(ctx context.Context, f models.ExpenseFilter) (Listing[models.Expense], error) {
	return list(ctx, &s.base, s.res, expensesPath+f.Query(), func(e models.Expense) bool { return matches(f, e) })
}

func (s *ExpenseService) Create(ctx context.Context, e models.NewExpense) (pending.Record[models.Expense], error) {
	draft := models.Expense{
		Amount:         e.Amount,
		OriginalAmount: e.Amount,
		Currency:       e.Currency,
		Description:    e.Description,
		Date:           e.Date,
		Category:       e.Category,
		Type:           e.Type,
	}
	rec, err := create(ctx, &s.base, s.res, e, draft)
	if err != nil {
		return rec, err
	}
	if rec.State == pending.Confirmed {
		s.invalidateDerived(ctx)
	}
	return rec, nil
}

// Update sends a partial update. offline reports that it was queued.
func (s *ExpenseService) Update(ctx context.Context, id int64, p models.ExpensePatch) (*models.Expense, bool, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, false, err
	}
	resp, err := s.api.Do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", expensesPath, id), p, s.timeout, uid)
	if err != nil {
		return nil, false, err
	}
	if resp.Offline {
		return nil, true, nil
	}
	var e models.Expense
	if err := resp.Decode(&e); err != nil {
		return nil, false, err
	}
	s.invalidateDerived(ctx)
	return &e, false, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) (bool, error) {
	uid, err := s.userID()
	if err != nil {
		return false, err
	}
	resp, err := s.api.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", expensesPath, id), nil, s.timeout, uid)
	if err != nil {
		return false, err
	}
	if resp.Offline {
		return true, nil
	}
	s.invalidateDerived(ctx)
	return false, nil
}

// Stats returns the totals; stale is set when they came from the cache.
func (s *ExpenseService) Stats(ctx context.Context) (models.Stats, bool, error) {
	return fetch[models.Stats](ctx, &s.base, statsPath)
}

// invalidateDerived drops cached filtered lists and stats. The unfiltered
// list is kept as the offline fallback.
func (s *ExpenseService) invalidateDerived(ctx context.Context) {
	uid, err := s.userID()
	if err != nil {
		return
	}
	s.invalidate(ctx, uid, expensesPath+"?", statsPath)
}
