package services

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/client/cache"
	"github.com/dmitrijs2005/fintrack/internal/client/models"
)

const settingsPath = "/api/settings"

type SettingsService struct {
	base
}

func NewSettingsService(d Deps) *SettingsService {
	return &SettingsService{base: newBase(d, "settings")}
}

func (s *SettingsService) Get(ctx context.Context) (models.Settings, bool, error) {
	return fetch[models.Settings](ctx, &s.base, settingsPath)
}

// SetBaseCurrency changes the currency new expenses are converted to.
// The cached copy is updated right away so offline reads see the change.
func (s *SettingsService) SetBaseCurrency(ctx context.Context, code string) (models.Settings, bool, error) {
	uid, err := s.userID()
	if err != nil {
		return models.Settings{}, false, err
	}
	want := models.Settings{BaseCurrency: code}
	resp, err := s.api.Do(ctx, http.MethodPatch, settingsPath, want, s.timeout, uid)
	if err != nil {
		return models.Settings{}, false, err
	}

	got := want
	if !resp.Offline {
		if err := resp.Decode(&got); err != nil {
			return models.Settings{}, false, err
		}
		s.invalidate(ctx, uid, statsPath)
	}
	if err := cache.SetJSON(ctx, s.cache, cache.Key(uid, settingsPath), got); err != nil {
		s.logger.Warn(ctx, "cache write failed", "error", err)
	}
	return got, resp.Offline, nil
}
