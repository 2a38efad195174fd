package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID int64) (*models.Settings, error) {
	query := `SELECT user_id, base_currency, updated_at FROM settings WHERE user_id = $1`

	s := &models.Settings{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.UserID, &s.BaseCurrency, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID int64, baseCurrency string) (*models.Settings, error) {
	query := `
		INSERT INTO settings (user_id, base_currency, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET base_currency = EXCLUDED.base_currency, updated_at = now()
		RETURNING user_id, base_currency, updated_at
	`
	s := &models.Settings{}
	err := r.db.QueryRowContext(ctx, query, userID, baseCurrency).Scan(&s.UserID, &s.BaseCurrency, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
