package transport

import (
	"sync"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
)

// Session holds the signed-in user and the token pair. Tokens live in memory
// only.
type Session struct {
	mu           sync.RWMutex
	user         *models.User
	accessToken  string
	refreshToken string
}

func (s *Session) Start(u models.User, pair models.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.accessToken = pair.AccessToken
	s.refreshToken = pair.RefreshToken
}

func (s *Session) SetTokens(pair models.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = pair.AccessToken
	s.refreshToken = pair.RefreshToken
}

func (s *Session) Tokens() models.TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.TokenPair{AccessToken: s.accessToken, RefreshToken: s.refreshToken}
}

// User returns the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) UserID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0, false
	}
	return s.user.ID, true
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
}
