// Package expenses persists income and expense records.
package expenses

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

type Repository interface {
	// List returns the user's records ordered by date, newest first.
	List(ctx context.Context, userID int64, f models.ExpenseFilter) ([]models.Expense, error)
	// Get returns common.ErrorNotFound when id does not exist or belongs to
	// another user.
	Get(ctx context.Context, userID, id int64) (*models.Expense, error)
	Create(ctx context.Context, e *models.Expense) (*models.Expense, error)
	Update(ctx context.Context, e *models.Expense) (*models.Expense, error)
	Delete(ctx context.Context, userID, id int64) error
	Stats(ctx context.Context, userID int64, monthStart time.Time) (*models.Stats, error)
}
