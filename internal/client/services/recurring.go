package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/pending"
)

const recurringPath = "/api/recurring"

type RecurringService struct {
	base
	res resource[models.RecurringExpense]
}

func NewRecurringService(d Deps) *RecurringService {
	return &RecurringService{
		base: newBase(d, "recurring"),
		res: resource[models.RecurringExpense]{
			listPath:   recurringPath,
			createPath: recurringPath,
			key:        func(r models.RecurringExpense) string { return idKey(r.ID) },
			fromMutation: func(m models.QueuedMutation) models.RecurringExpense {
				var r models.RecurringExpense
				_ = json.Unmarshal(m.Data, &r)
				r.ID = -m.Timestamp
				return r
			},
		},
	}
}

func (s *RecurringService) List(ctx context.Context) (Listing[models.RecurringExpense], error) {
	return list(ctx, &s.base, s.res, recurringPath, nil)
}

func (s *RecurringService) Create(ctx context.Context, r models.NewRecurring) (pending.Record[models.RecurringExpense], error) {
	draft := models.RecurringExpense{
		Amount:      r.Amount,
		Currency:    r.Currency,
		Description: r.Description,
		Category:    r.Category,
		Frequency:   r.Frequency,
		NextDueDate: r.NextDueDate,
	}
	return create(ctx, &s.base, s.res, r, draft)
}

// Delete deactivates a recurring expense. offline reports that it was queued.
func (s *RecurringService) Delete(ctx context.Context, id int64) (bool, error) {
	uid, err := s.userID()
	if err != nil {
		return false, err
	}
	resp, err := s.api.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", recurringPath, id), nil, s.timeout, uid)
	if err != nil {
		return false, err
	}
	return resp.Offline, nil
}
