// Package invoices persists uploaded invoice metadata. File bytes live in
// the object store under Invoice.FileURL.
package invoices

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error)
	// List returns the user's invoices, newest first.
	List(ctx context.Context, userID int64) ([]models.Invoice, error)
	Get(ctx context.Context, userID, id int64) (*models.Invoice, error)
	SetStatus(ctx context.Context, id int64, status string, data json.RawMessage) error
}
