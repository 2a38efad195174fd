package invoices

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

const columns = `id, user_id, file_url, file_name, content_type, processed_data, status, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvoice(s scanner) (*models.Invoice, error) {
	inv := &models.Invoice{}
	var data []byte
	if err := s.Scan(&inv.ID, &inv.UserID, &inv.FileURL, &inv.FileName, &inv.ContentType,
		&data, &inv.Status, &inv.CreatedAt); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		inv.ProcessedData = json.RawMessage(data)
	}
	return inv, nil
}

func (r *PostgresRepository) Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	query := `
		INSERT INTO invoices (user_id, file_url, file_name, content_type, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if inv.Status == "" {
		inv.Status = models.InvoicePending
	}
	err := r.db.QueryRowContext(ctx, query, inv.UserID, inv.FileURL, inv.FileName, inv.ContentType, inv.Status).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return inv, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int64) ([]models.Invoice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM invoices WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id int64) (*models.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM invoices WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return inv, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id int64, status string, data json.RawMessage) error {
	var payload any
	if len(data) > 0 {
		payload = string(data)
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = $1, processed_data = COALESCE($2::jsonb, processed_data) WHERE id = $3`,
		status, payload, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
