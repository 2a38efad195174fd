package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fintrack/internal/client/transport"
	"github.com/dmitrijs2005/fintrack/internal/logging"
)

// Metadata keys for the last signed-in user.
const (
	metaUsername = "username"
	metaUserID   = "user_id"
)

// AuthService signs users in and out. Auth calls always go straight to the
// server and are never queued.
type AuthService struct {
	api     API
	session *transport.Session
	meta    metadata.Repository
	logger  logging.Logger
}

func NewAuthService(d Deps) *AuthService {
	return &AuthService{
		api:     d.API,
		session: d.Session,
		meta:    d.Meta,
		logger:  d.Logger.With("module", "auth"),
	}
}

func (a *AuthService) Register(ctx context.Context, username string, password []byte) (*models.User, error) {
	body, err := json.Marshal(models.Credentials{Username: username, Password: string(password)})
	if err != nil {
		return nil, err
	}
	resp, err := a.api.Send(ctx, http.MethodPost, "/api/register", body, models.EncodingJSON)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := resp.Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates, starts the session and remembers the user locally.
func (a *AuthService) Login(ctx context.Context, username string, password []byte) (*models.User, error) {
	body, err := json.Marshal(models.Credentials{Username: username, Password: string(password)})
	if err != nil {
		return nil, err
	}
	resp, err := a.api.Send(ctx, http.MethodPost, "/api/login", body, models.EncodingJSON)
	if err != nil {
		return nil, err
	}

	var lr models.LoginResponse
	if err := resp.Decode(&lr); err != nil {
		return nil, err
	}
	if lr.User == nil {
		lr.User = &models.User{Username: username}
	}
	a.session.Start(*lr.User, lr.TokenPair)

	if err := a.meta.Set(ctx, metaUsername, []byte(lr.User.Username)); err != nil {
		return nil, err
	}
	if err := a.meta.Set(ctx, metaUserID, []byte(strconv.FormatInt(lr.User.ID, 10))); err != nil {
		return nil, err
	}
	return lr.User, nil
}

// Logout revokes the refresh token when the server is reachable and always
// ends the local session.
func (a *AuthService) Logout(ctx context.Context) error {
	tokens := a.session.Tokens()
	defer a.session.Clear()

	if tokens.RefreshToken == "" {
		return nil
	}
	body, err := json.Marshal(map[string]string{"refreshToken": tokens.RefreshToken})
	if err != nil {
		return err
	}
	if _, err := a.api.Send(ctx, http.MethodPost, "/api/logout", body, models.EncodingJSON); err != nil {
		a.logger.Warn(ctx, "logout not confirmed by server", "error", err)
	}
	return nil
}

// WhoAmI returns the current user, asking the server when it can.
func (a *AuthService) WhoAmI(ctx context.Context) (*models.User, error) {
	u := a.session.User()
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	resp, err := a.api.Send(ctx, http.MethodGet, "/api/user", nil, models.EncodingJSON)
	if err != nil {
		a.logger.Debug(ctx, "using session user", "error", err)
		return u, nil
	}
	var fresh models.User
	if err := resp.Decode(&fresh); err != nil {
		return u, nil
	}
	return &fresh, nil
}

func (a *AuthService) CurrentUser() *models.User {
	return a.session.User()
}

// LastUsername returns the username of the last successful login, if any.
func (a *AuthService) LastUsername(ctx context.Context) (string, error) {
	v, err := a.meta.Get(ctx, metaUsername)
	if err != nil {
		return "", err
	}
	return string(v), nil
}
