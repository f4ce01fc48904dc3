package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docker/libtrust"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/distribution-auth/sessiongate/auth"
	"github.com/distribution-auth/sessiongate/auth/authn"
	"github.com/distribution-auth/sessiongate/auth/refresh"
	"github.com/distribution-auth/sessiongate/auth/token/jwt"
)

type sessionFixture struct {
	service    auth.SessionServiceImpl
	repository *refresh.InMemoryRefreshRecordRepository

	accessTokens  jwt.AccessTokenIssuer
	refreshTokens jwt.RefreshTokenIssuer
}

func newSessionFixture(t *testing.T) sessionFixture {
	t.Helper()

	signingKey, err := libtrust.GenerateECP256PrivateKey()
	require.NoError(t, err)

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	f := sessionFixture{
		repository:    &refresh.InMemoryRefreshRecordRepository{},
		accessTokens:  jwt.NewAccessTokenIssuer(signingKey),
		refreshTokens: jwt.NewRefreshTokenIssuer(signingKey, jwt.WithExpiration(24*time.Hour)),
	}

	f.service = auth.SessionServiceImpl{
		Authenticator: authn.NewStaticPasswordAuthenticator(map[string]string{
			"u42": string(passwordHash),
		}),
		TokenIssuer: auth.TokenIssuer{
			AccessTokenIssuer:  f.accessTokens,
			RefreshTokenIssuer: f.refreshTokens,
		},
		Repository: f.repository,
	}

	return f
}

func TestSessionServiceImpl_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		f := newSessionFixture(t)

		response, err := f.service.Login(ctx, auth.LoginRequest{Username: "u42", Password: "password"})
		require.NoError(t, err)

		assert.Equal(t, auth.Identity{ID: "u42"}, response.Identity)
		require.Len(t, response.Cookies, 2)

		accessCookie, refreshCookie := response.Cookies[0], response.Cookies[1]

		assert.Equal(t, "at", accessCookie.Name)
		assert.Equal(t, 30*time.Minute, accessCookie.MaxAge)

		claims := f.accessTokens.VerifyAccessToken(ctx, accessCookie.Value)
		require.True(t, claims.HasValue())
		assert.Equal(t, "u42", claims.Value().IdentityID)

		assert.Equal(t, "rt", refreshCookie.Name)
		assert.Equal(t, response.RefreshIndex, refreshCookie.Value)
		assert.Equal(t, 24*time.Hour, refreshCookie.MaxAge)

		found, err := f.repository.FindRefreshRecord(ctx, response.RefreshIndex)
		require.NoError(t, err)
		require.True(t, found.HasValue())

		record := found.Value()
		assert.Equal(t, "u42", record.OwnerID)
		assert.NotEqual(t, record.Index, record.Token)
		assert.NoError(t, f.refreshTokens.VerifyRefreshToken(ctx, record.Token, record.OwnerID))
	})

	t.Run("AuthenticationFailed", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.service.Login(ctx, auth.LoginRequest{Username: "u42", Password: "wrong"})

		assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
	})

	t.Run("StoreUnavailable", func(t *testing.T) {
		f := newSessionFixture(t)
		f.service.Repository = failingRepository{f.repository}

		_, err := f.service.Login(ctx, auth.LoginRequest{Username: "u42", Password: "password"})

		assert.ErrorIs(t, err, auth.ErrStoreUnavailable)
	})
}

func TestSessionServiceImpl_Logout(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)

	login, err := f.service.Login(ctx, auth.LoginRequest{Username: "u42", Password: "password"})
	require.NoError(t, err)

	for _, index := range []string{login.RefreshIndex, login.RefreshIndex, ""} {
		response, err := f.service.Logout(ctx, auth.LogoutRequest{RefreshIndex: index})
		require.NoError(t, err)

		assert.Equal(t, []auth.CookieMutation{auth.ClearCookie("at"), auth.ClearCookie("rt")}, response.Cookies)
	}

	found, err := f.repository.FindRefreshRecord(ctx, login.RefreshIndex)
	require.NoError(t, err)

	assert.False(t, found.HasValue())
}

type failingRepository struct {
	auth.RefreshRecordRepository
}

func (failingRepository) SaveRefreshRecord(context.Context, auth.RefreshRecord, time.Duration) error {
	return auth.StoreError(errors.New("connection refused"))
}

func (failingRepository) DeleteRefreshRecord(context.Context, string) error {
	return auth.StoreError(errors.New("connection refused"))
}
