package jwt

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/docker/libtrust"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jonboulle/clockwork"
)

// Clock provides the current time for issuing and verifying tokens.
type Clock interface {
	Now() time.Time
}

// Option configures token issuers.
type Option interface {
	applyAccessTokenIssuer(i *AccessTokenIssuer)
	applyRefreshTokenIssuer(i *RefreshTokenIssuer)
}

type clockOption struct {
	clock Clock
}

func (o clockOption) applyAccessTokenIssuer(i *AccessTokenIssuer)   { i.clock = o.clock }
func (o clockOption) applyRefreshTokenIssuer(i *RefreshTokenIssuer) { i.clock = o.clock }

// WithClock sets the clock used to stamp and check token times.
func WithClock(clock Clock) Option {
	return clockOption{clock}
}

type expirationOption struct {
	expiration time.Duration
}

func (o expirationOption) applyAccessTokenIssuer(i *AccessTokenIssuer)   { i.expiration = o.expiration }
func (o expirationOption) applyRefreshTokenIssuer(i *RefreshTokenIssuer) { i.expiration = o.expiration }

// WithExpiration overrides the lifetime of issued tokens.
// Non-positive values are ignored.
func WithExpiration(expiration time.Duration) Option {
	return expirationOption{expiration}
}

func defaultClock(clock Clock) Clock {
	if clock == nil {
		return clockwork.NewRealClock()
	}

	return clock
}

func detectSigningMethod(key libtrust.PrivateKey) (jwt.SigningMethod, error) {
	switch key.KeyType() {
	case "RSA":
		return jwt.SigningMethodRS256, nil
	case "EC":
		ecKey, ok := key.CryptoPrivateKey().(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("unsupported EC signing key %T", key.CryptoPrivateKey())
		}

		switch ecKey.Curve.Params().BitSize {
		case 256:
			return jwt.SigningMethodES256, nil
		case 384:
			return jwt.SigningMethodES384, nil
		case 521:
			return jwt.SigningMethodES512, nil
		}

		return nil, fmt.Errorf("unsupported EC curve %s", ecKey.Curve.Params().Name)
	default:
		return nil, fmt.Errorf("unsupported signing key type %q", key.KeyType())
	}
}

// parse verifies the signature and algorithm of a token and decodes its claims.
// Time based claims are left to the caller so that they are checked against the issuer's clock.
func parse(tokenString string, claims jwt.Claims, key libtrust.PrivateKey, alg jwt.SigningMethod) bool {
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (interface{}, error) {
			return key.PublicKey().CryptoPublicKey(), nil
		},
		jwt.WithValidMethods([]string{alg.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return false
	}

	return token.Valid
}
