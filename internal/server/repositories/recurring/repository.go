// Package recurring persists recurring expense templates.
package recurring

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

type Repository interface {
	ListActive(ctx context.Context, userID int64) ([]models.RecurringExpense, error)
	Create(ctx context.Context, r *models.RecurringExpense) (*models.RecurringExpense, error)
	// Deactivate soft-deletes; common.ErrorNotFound if nothing matched.
	Deactivate(ctx context.Context, userID, id int64) error
	// Due returns active rows of all users whose next due date is <= now.
	Due(ctx context.Context, now time.Time) ([]models.RecurringExpense, error)
	SetNextDueDate(ctx context.Context, id int64, next time.Time) error
}
