package auth

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// SessionService opens and closes sessions.
type SessionService interface {
	// Login authenticates a user and opens a new session.
	Login(ctx context.Context, r LoginRequest) (LoginResponse, error)

	// Logout closes the session identified by a refresh index.
	Logout(ctx context.Context, r LogoutRequest) (LogoutResponse, error)
}

type LoginRequest struct {
	Username string
	Password string
}

type LoginResponse struct {
	Identity     Identity
	RefreshIndex string

	Cookies []CookieMutation
}

type LogoutRequest struct {
	// RefreshIndex may be empty if the client holds no refresh index.
	RefreshIndex string
}

type LogoutResponse struct {
	Cookies []CookieMutation
}

// TokenIssuer is a facade combining different type of token issuers.
type TokenIssuer struct {
	AccessTokenIssuer
	RefreshTokenIssuer
}

// SessionServiceImpl opens sessions by persisting a refresh record and issuing an access token.
type SessionServiceImpl struct {
	Authenticator PasswordAuthenticator
	TokenIssuer   TokenIssuer
	Repository    RefreshRecordRepository

	Logger *zap.Logger
}

func (s SessionServiceImpl) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}

	return s.Logger
}

// Login implements SessionService.
func (s SessionServiceImpl) Login(ctx context.Context, r LoginRequest) (LoginResponse, error) {
	identity, err := s.Authenticator.Authenticate(ctx, r.Username, r.Password)
	if err != nil {
		return LoginResponse{}, err
	}

	refreshToken, err := s.TokenIssuer.IssueRefreshToken(ctx, identity.ID)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("issuing refresh token: %w", err)
	}

	index, err := uuid.NewV4()
	if err != nil {
		return LoginResponse{}, fmt.Errorf("generating refresh index: %w", err)
	}

	record := RefreshRecord{
		Index:   index.String(),
		Token:   refreshToken.Payload,
		OwnerID: identity.ID,
	}

	err = s.Repository.SaveRefreshRecord(ctx, record, refreshToken.ExpiresIn)
	if err != nil {
		return LoginResponse{}, err
	}

	accessToken, err := s.TokenIssuer.IssueAccessToken(ctx, identity.ID)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("issuing access token: %w", err)
	}

	s.logger().Debug("session opened", zap.String("identity", identity.ID))

	return LoginResponse{
		Identity:     identity,
		RefreshIndex: record.Index,
		Cookies: []CookieMutation{
			SetCookie(AccessTokenCookie, accessToken.Payload, accessToken.ExpiresIn),
			SetCookie(RefreshIndexCookie, record.Index, refreshToken.ExpiresIn),
		},
	}, nil
}

// Logout implements SessionService.
func (s SessionServiceImpl) Logout(ctx context.Context, r LogoutRequest) (LogoutResponse, error) {
	if r.RefreshIndex != "" {
		err := s.Repository.DeleteRefreshRecord(ctx, r.RefreshIndex)
		if err != nil {
			return LogoutResponse{}, err
		}
	}

	s.logger().Debug("session closed")

	return LogoutResponse{
		Cookies: []CookieMutation{
			ClearCookie(AccessTokenCookie),
			ClearCookie(RefreshIndexCookie),
		},
	}, nil
}
