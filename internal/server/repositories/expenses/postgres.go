package expenses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

const columns = `id, user_id, amount, original_amount, currency, exchange_rate, description,
	date, category, type, is_recurring, recurring_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (*models.Expense, error) {
	e := &models.Expense{}
	var recurringID sql.NullInt64
	err := s.Scan(&e.ID, &e.UserID, &e.Amount, &e.OriginalAmount, &e.Currency, &e.ExchangeRate,
		&e.Description, &e.Date, &e.Category, &e.Type, &e.IsRecurring, &recurringID,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if recurringID.Valid {
		id := recurringID.Int64
		e.RecurringID = &id
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int64, f models.ExpenseFilter) ([]models.Expense, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	if f.Start != nil {
		args = append(args, *f.Start)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if f.End != nil {
		args = append(args, *f.End)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + columns + ` FROM expenses WHERE ` + strings.Join(where, " AND ") + ` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id int64) (*models.Expense, error) {
	query := `SELECT ` + columns + ` FROM expenses WHERE id = $1 AND user_id = $2`
	e, err := scanExpense(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	query := `
		INSERT INTO expenses (user_id, amount, original_amount, currency, exchange_rate, description,
			date, category, type, is_recurring, recurring_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, e.UserID, e.Amount, e.OriginalAmount, e.Currency,
		e.ExchangeRate, e.Description, e.Date, e.Category, e.Type, e.IsRecurring, e.RecurringID).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Update(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	query := `
		UPDATE expenses
		SET amount = $1, original_amount = $2, currency = $3, exchange_rate = $4, description = $5,
			date = $6, category = $7, type = $8, updated_at = now()
		WHERE id = $9 AND user_id = $10
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, e.Amount, e.OriginalAmount, e.Currency, e.ExchangeRate,
		e.Description, e.Date, e.Category, e.Type, e.ID, e.UserID).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
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

func (r *PostgresRepository) Stats(ctx context.Context, userID int64, monthStart time.Time) (*models.Stats, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'income' AND date >= $2), 0)
		FROM expenses
		WHERE user_id = $1
	`
	s := &models.Stats{}
	if err := r.db.QueryRowContext(ctx, query, userID, monthStart).
		Scan(&s.TotalIncome, &s.TotalExpense, &s.MonthlyIncome); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	s.Balance = s.TotalIncome - s.TotalExpense
	return s, nil
}
