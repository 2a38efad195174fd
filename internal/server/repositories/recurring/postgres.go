package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

const columns = `id, user_id, amount, currency, description, category, frequency, next_due_date, active`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.RecurringExpense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.RecurringExpense, 0)
	for rows.Next() {
		var re models.RecurringExpense
		if err := rows.Scan(&re.ID, &re.UserID, &re.Amount, &re.Currency, &re.Description,
			&re.Category, &re.Frequency, &re.NextDueDate, &re.Active); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, re)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, userID int64) ([]models.RecurringExpense, error) {
	return r.query(ctx, `SELECT `+columns+` FROM recurring_expenses
		WHERE user_id = $1 AND active ORDER BY next_due_date`, userID)
}

func (r *PostgresRepository) Due(ctx context.Context, now time.Time) ([]models.RecurringExpense, error) {
	return r.query(ctx, `SELECT `+columns+` FROM recurring_expenses
		WHERE active AND next_due_date <= $1 ORDER BY id`, now)
}

func (r *PostgresRepository) Create(ctx context.Context, re *models.RecurringExpense) (*models.RecurringExpense, error) {
	query := `
		INSERT INTO recurring_expenses (user_id, amount, currency, description, category, frequency, next_due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, active
	`
	err := r.db.QueryRowContext(ctx, query, re.UserID, re.Amount, re.Currency, re.Description,
		re.Category, re.Frequency, re.NextDueDate).Scan(&re.ID, &re.Active)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return re, nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_expenses SET active = FALSE WHERE id = $1 AND user_id = $2 AND active`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SetNextDueDate(ctx context.Context, id int64, next time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE recurring_expenses SET next_due_date = $1 WHERE id = $2`, next, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
