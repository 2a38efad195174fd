package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
)

type RecurringService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	expenses    *ExpenseService
	log         logging.Logger
}

func NewRecurringService(db *sql.DB, m repomanager.RepositoryManager, expenses *ExpenseService, log logging.Logger) *RecurringService {
	return &RecurringService{db: db, repomanager: m, expenses: expenses, log: log.With("module", "recurring")}
}

func (s *RecurringService) List(ctx context.Context, userID int64) ([]models.RecurringExpense, error) {
	return s.repomanager.Recurring(s.db).ListActive(ctx, userID)
}

func (s *RecurringService) Create(ctx context.Context, userID int64, in models.NewRecurring) (*models.RecurringExpense, error) {
	due, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	return s.repomanager.Recurring(s.db).Create(ctx, &models.RecurringExpense{
		UserID:      userID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Description: in.Description,
		Category:    in.Category,
		Frequency:   in.Frequency,
		NextDueDate: due,
	})
}

// Delete deactivates the template; expenses it produced are kept.
func (s *RecurringService) Delete(ctx context.Context, userID, id int64) error {
	return s.repomanager.Recurring(s.db).Deactivate(ctx, userID, id)
}

// MaterializeDue books one expense for every active template that is due
// and moves its next due date past now. Each template gets its own
// transaction; a failing one is logged and skipped.
func (s *RecurringService) MaterializeDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repomanager.Recurring(s.db).Due(ctx, now)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, r := range due {
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			_, err := s.expenses.create(ctx, tx, &models.Expense{
				UserID:         r.UserID,
				OriginalAmount: r.Amount,
				Currency:       r.Currency,
				Description:    r.Description,
				Date:           r.NextDueDate,
				Category:       r.Category,
				Type:           models.TypeExpense,
				IsRecurring:    true,
				RecurringID:    &r.ID,
			})
			if err != nil {
				return err
			}
			next := r.NextDueDate
			for !next.After(now) {
				next = models.Advance(next, r.Frequency)
			}
			return s.repomanager.Recurring(tx).SetNextDueDate(ctx, r.ID, next)
		})
		if err != nil {
			s.log.Error(ctx, "materialize recurring failed", "recurring_id", r.ID, "user_id", r.UserID, "error", err)
			continue
		}
		created++
	}
	return created, nil
}
