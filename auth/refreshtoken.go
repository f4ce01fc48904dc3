package auth

import (
	"context"
	"time"

	"github.com/distribution-auth/sessiongate/pkg/option"
)

// RefreshTokenSubject is the subject claim of refresh tokens.
// It keeps refresh tokens from being accepted as access tokens when both share a signing key.
const RefreshTokenSubject = "rt"

// RefreshToken is a long-lived credential used to obtain new access tokens without presenting credentials again.
type RefreshToken struct {
	Payload string

	ExpiresIn time.Duration
	IssuedAt  time.Time
}

// RefreshRecord is a persisted refresh token.
//
// Clients only ever hold the Index: the token itself never leaves the server.
type RefreshRecord struct {
	Index   string
	Token   string
	OwnerID string
}

// RefreshTokenIssuer issues a refresh token for an identity.
type RefreshTokenIssuer interface {
	IssueRefreshToken(ctx context.Context, identityID string) (RefreshToken, error)
}

// RefreshTokenVerifier verifies a stored refresh token and its binding to the record owner.
//
// It returns ErrInvalidToken for any token that fails verification
// or that was issued for an identity other than ownerID.
type RefreshTokenVerifier interface {
	VerifyRefreshToken(ctx context.Context, refreshToken string, ownerID string) error
}

// RefreshRecordStore looks up and deletes refresh records.
//
// Both operations wrap infrastructure failures with ErrStoreUnavailable.
type RefreshRecordStore interface {
	// FindRefreshRecord returns the record stored under index, if any.
	FindRefreshRecord(ctx context.Context, index string) (option.Option[RefreshRecord], error)

	// DeleteRefreshRecord deletes the record stored under index.
	// Deleting a missing record is not an error.
	DeleteRefreshRecord(ctx context.Context, index string) error
}

// RefreshRecordRepository is a RefreshRecordStore that can also persist new records.
type RefreshRecordRepository interface {
	RefreshRecordStore

	SaveRefreshRecord(ctx context.Context, record RefreshRecord, ttl time.Duration) error
}

// RefreshTokenService is a facade combining issuance and verification of refresh tokens.
type RefreshTokenService interface {
	RefreshTokenIssuer
	RefreshTokenVerifier
}
