// Package settings persists per-user preferences (base currency).
package settings

import (
	"context"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when the user has no settings row yet.
	Get(ctx context.Context, userID int64) (*models.Settings, error)
	Upsert(ctx context.Context, userID int64, baseCurrency string) (*models.Settings, error)
}
