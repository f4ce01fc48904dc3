package jwt

import (
	"context"
	"time"

	"github.com/docker/libtrust"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v4"

	"github.com/distribution-auth/sessiongate/auth"
)

// DefaultRefreshTokenExpiration is the lifetime of refresh tokens unless configured otherwise.
const DefaultRefreshTokenExpiration = 30 * 24 * time.Hour

// RefreshTokenIssuer issues and verifies refresh tokens.
type RefreshTokenIssuer struct {
	signingKey libtrust.PrivateKey
	expiration time.Duration

	clock Clock
}

// NewRefreshTokenIssuer returns a new RefreshTokenIssuer.
func NewRefreshTokenIssuer(signingKey libtrust.PrivateKey, opts ...Option) RefreshTokenIssuer {
	i := RefreshTokenIssuer{
		signingKey: signingKey,
	}

	for _, opt := range opts {
		opt.applyRefreshTokenIssuer(&i)
	}

	if i.expiration <= 0 {
		i.expiration = DefaultRefreshTokenExpiration
	}

	i.clock = defaultClock(i.clock)

	return i
}

// IssueRefreshToken implements auth.RefreshTokenIssuer.
func (i RefreshTokenIssuer) IssueRefreshToken(_ context.Context, identityID string) (auth.RefreshToken, error) {
	alg, err := detectSigningMethod(i.signingKey)
	if err != nil {
		return auth.RefreshToken{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return auth.RefreshToken{}, err
	}

	now := i.clock.Now()

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   auth.RefreshTokenSubject,
			Issuer:    auth.AccessTokenIssuerClaim,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiration)),
			ID:        id.String(),
		},
		IdentityID: identityID,
	}

	token := jwt.NewWithClaims(alg, claims)

	signedToken, err := token.SignedString(i.signingKey.CryptoPrivateKey())
	if err != nil {
		return auth.RefreshToken{}, err
	}

	return auth.RefreshToken{
		Payload:   signedToken,
		ExpiresIn: i.expiration,
		IssuedAt:  now,
	}, nil
}

// VerifyRefreshToken implements auth.RefreshTokenVerifier.
func (i RefreshTokenIssuer) VerifyRefreshToken(_ context.Context, refreshToken string, ownerID string) error {
	alg, err := detectSigningMethod(i.signingKey)
	if err != nil {
		return auth.ErrInvalidToken
	}

	var claims accessClaims

	if !parse(refreshToken, &claims, i.signingKey, alg) {
		return auth.ErrInvalidToken
	}

	now := i.clock.Now()

	if !claims.VerifyExpiresAt(now, true) ||
		!claims.VerifyNotBefore(now, false) ||
		!claims.VerifyIssuer(auth.AccessTokenIssuerClaim, true) ||
		claims.Subject != auth.RefreshTokenSubject ||
		claims.IdentityID != ownerID {
		return auth.ErrInvalidToken
	}

	return nil
}
