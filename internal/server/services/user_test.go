package services

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *memDB) {
	t.Helper()
	mem := newMemDB()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	return NewUserService(txDB(t), memManager{mem}, cfg), mem
}

func randomCreds() models.Credentials {
	return models.Credentials{
		Username: gofakeit.Username(),
		Password: gofakeit.Password(true, true, true, false, false, 12),
	}
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	creds := randomCreds()

	u, err := svc.Register(ctx, creds)
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	got, pair, err := svc.Login(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.Len(t, pair.RefreshToken, 64)

	uid, err := svc.Authenticate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	svc, _ := newUserService(t)
	creds := randomCreds()

	_, err := svc.Register(context.Background(), creds)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), creds)
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "username", ve.Field)
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc, _ := newUserService(t)
	_, err := svc.Register(context.Background(), models.Credentials{Username: "x", Password: "1"})
	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUserService_LoginFailures(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	creds := randomCreds()
	_, err := svc.Register(ctx, creds)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, models.Credentials{Username: creds.Username, Password: "wrong-password"})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, _, err = svc.Login(ctx, models.Credentials{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUserService_RefreshRotates(t *testing.T) {
	svc, mem := newUserService(t)
	ctx := context.Background()
	creds := randomCreds()
	_, err := svc.Register(ctx, creds)
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, creds)
	require.NoError(t, err)

	next, err := svc.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, ok := mem.tokens[pair.RefreshToken]
	assert.False(t, ok, "old token removed")

	_, err = svc.RefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized, "old token cannot be reused")
}

func TestUserService_RefreshExpired(t *testing.T) {
	svc, mem := newUserService(t)
	mem.tokens["stale"] = &models.RefreshToken{UserID: 1, Token: "stale", Expires: time.Now().Add(-time.Minute)}

	_, err := svc.RefreshToken(context.Background(), "stale")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	assert.NotContains(t, mem.tokens, "stale")
}

func TestUserService_LogoutAndPurge(t *testing.T) {
	svc, mem := newUserService(t)
	ctx := context.Background()
	mem.tokens["a"] = &models.RefreshToken{Token: "a", Expires: time.Now().Add(time.Hour)}
	mem.tokens["b"] = &models.RefreshToken{Token: "b", Expires: time.Now().Add(-time.Hour)}

	require.NoError(t, svc.Logout(ctx, "a"))
	assert.NotContains(t, mem.tokens, "a")

	n, err := svc.PurgeExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUserService_GetUser(t *testing.T) {
	svc, _ := newUserService(t)
	u, err := svc.Register(context.Background(), randomCreds())
	require.NoError(t, err)

	got, err := svc.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)

	_, err = svc.GetUser(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
