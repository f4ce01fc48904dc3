package auth

import (
	"context"
	"time"

	"github.com/distribution-auth/sessiongate/pkg/option"
)

// Literal claim values of access tokens.
// Previously issued tokens carry these values, changing them invalidates every live session.
const (
	AccessTokenSubject     = "at"
	AccessTokenIssuerClaim = "localhost"
)

// AccessTokenLifetime is the default lifetime of access tokens and the max age of the access token cookie.
const AccessTokenLifetime = 30 * time.Minute

// AccessToken is a short-lived, stateless credential proving recent authentication.
type AccessToken struct {
	Payload string

	ExpiresIn time.Duration
	IssuedAt  time.Time
}

// AccessClaims are the claims decoded from a valid access token.
type AccessClaims struct {
	Subject    string
	Issuer     string
	IdentityID string

	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccessTokenIssuer issues an access token for an identity.
type AccessTokenIssuer interface {
	IssueAccessToken(ctx context.Context, identityID string) (AccessToken, error)
}

// AccessTokenVerifier verifies an access token.
//
// It returns an empty Option for any token that fails verification, without telling why.
type AccessTokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) option.Option[AccessClaims]
}

// AccessTokenService is a facade combining issuance and verification of access tokens.
type AccessTokenService interface {
	AccessTokenIssuer
	AccessTokenVerifier
}
