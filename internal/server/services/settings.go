package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/currency"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
)

type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager) *SettingsService {
	return &SettingsService{db: db, repomanager: m}
}

// Get returns the user's settings, creating the default row on first access.
func (s *SettingsService) Get(ctx context.Context, userID int64) (*models.Settings, error) {
	return getOrCreateSettings(ctx, s.repomanager, s.db, userID)
}

func (s *SettingsService) Update(ctx context.Context, userID int64, p models.SettingsPatch) (*models.Settings, error) {
	p.BaseCurrency = strings.ToUpper(p.BaseCurrency)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.repomanager.Settings(s.db).Upsert(ctx, userID, p.BaseCurrency)
}

func getOrCreateSettings(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, userID int64) (*models.Settings, error) {
	repo := m.Settings(db)
	st, err := repo.Get(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return repo.Upsert(ctx, userID, currency.DefaultCode)
	}
	return st, err
}

// baseCurrency is the currency amounts of userID are stored in.
func baseCurrency(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, userID int64) (string, error) {
	st, err := getOrCreateSettings(ctx, m, db, userID)
	if err != nil {
		return "", err
	}
	return st.BaseCurrency, nil
}
