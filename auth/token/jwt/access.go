package jwt

import (
	"context"
	"time"

	"github.com/docker/libtrust"
	"github.com/golang-jwt/jwt/v4"

	"github.com/distribution-auth/sessiongate/auth"
	"github.com/distribution-auth/sessiongate/pkg/option"
)

type accessClaims struct {
	jwt.RegisteredClaims

	IdentityID string `json:"id,omitempty"`
}

// AccessTokenIssuer issues and verifies access tokens.
//
// Tokens carry the claims {sub: "at", iss: "localhost", id, iat, exp}.
type AccessTokenIssuer struct {
	signingKey libtrust.PrivateKey
	expiration time.Duration

	clock Clock
}

// NewAccessTokenIssuer returns a new AccessTokenIssuer.
func NewAccessTokenIssuer(signingKey libtrust.PrivateKey, opts ...Option) AccessTokenIssuer {
	i := AccessTokenIssuer{
		signingKey: signingKey,
	}

	for _, opt := range opts {
		opt.applyAccessTokenIssuer(&i)
	}

	if i.expiration <= 0 {
		i.expiration = auth.AccessTokenLifetime
	}

	i.clock = defaultClock(i.clock)

	return i
}

// IssueAccessToken implements auth.AccessTokenIssuer.
func (i AccessTokenIssuer) IssueAccessToken(_ context.Context, identityID string) (auth.AccessToken, error) {
	alg, err := detectSigningMethod(i.signingKey)
	if err != nil {
		return auth.AccessToken{}, err
	}

	now := i.clock.Now()

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   auth.AccessTokenSubject,
			Issuer:    auth.AccessTokenIssuerClaim,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiration)),
		},
		IdentityID: identityID,
	}

	token := jwt.NewWithClaims(alg, claims)

	signedToken, err := token.SignedString(i.signingKey.CryptoPrivateKey())
	if err != nil {
		return auth.AccessToken{}, err
	}

	return auth.AccessToken{
		Payload:   signedToken,
		ExpiresIn: i.expiration,
		IssuedAt:  now,
	}, nil
}

// VerifyAccessToken implements auth.AccessTokenVerifier.
func (i AccessTokenIssuer) VerifyAccessToken(_ context.Context, token string) option.Option[auth.AccessClaims] {
	alg, err := detectSigningMethod(i.signingKey)
	if err != nil {
		return option.None[auth.AccessClaims]()
	}

	var claims accessClaims

	if !parse(token, &claims, i.signingKey, alg) {
		return option.None[auth.AccessClaims]()
	}

	if !claims.VerifyExpiresAt(i.clock.Now(), true) ||
		!claims.VerifyIssuer(auth.AccessTokenIssuerClaim, true) ||
		claims.Subject != auth.AccessTokenSubject {
		return option.None[auth.AccessClaims]()
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time.UTC()
	}

	return option.Some(auth.AccessClaims{
		Subject:    claims.Subject,
		Issuer:     claims.Issuer,
		IdentityID: claims.IdentityID,
		IssuedAt:   issuedAt,
		ExpiresAt:  claims.ExpiresAt.Time.UTC(),
	})
}
