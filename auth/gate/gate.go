// Package gate decides whether an inbound request carries a valid session.
//
// The decision inspects two cookies: the access token ("at") and the refresh index ("rt").
// A valid access token admits the request without any I/O.
// Otherwise the refresh index is used to look up a persisted refresh record
// and, if the stored refresh token is still valid, a new access token is issued (rotation).
// A refresh record whose token fails validation is deleted and both cookies are cleared (revocation).
package gate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/distribution-auth/sessiongate/auth"
	"github.com/distribution-auth/sessiongate/pkg/option"
)

// Credentials are the session cookies presented by a request.
//
// An absent cookie is an empty Option. A present cookie with an empty value is not absent.
type Credentials struct {
	AccessToken  option.Option[string]
	RefreshIndex option.Option[string]
}

func (c Credentials) hasAccessToken() bool {
	return c.AccessToken != nil && c.AccessToken.HasValue()
}

func (c Credentials) hasRefreshIndex() bool {
	return c.RefreshIndex != nil && c.RefreshIndex.HasValue()
}

// Decision is the outcome of authenticating a request.
type Decision struct {
	// Admitted reports whether the request may proceed to the handler.
	Admitted bool

	// Identity is the resolved caller. Only set when Admitted is true.
	Identity auth.Identity

	// Reason explains a rejection. It is never exposed to clients.
	Reason error

	// Cookies are the response cookie mutations that must be applied regardless of the verdict.
	Cookies []auth.CookieMutation
}

func admit(identity auth.Identity, cookies ...auth.CookieMutation) Decision {
	return Decision{
		Admitted: true,
		Identity: identity,
		Cookies:  cookies,
	}
}

func reject(reason error, cookies ...auth.CookieMutation) Decision {
	return Decision{
		Reason:  reason,
		Cookies: cookies,
	}
}

// Gate authenticates requests using access tokens and rotates them using persisted refresh records.
//
// Gate holds no mutable state: it is safe for concurrent use as long as its collaborators are.
type Gate struct {
	accessTokens  auth.AccessTokenService
	refreshTokens auth.RefreshTokenVerifier
	store         auth.RefreshRecordStore

	cookieOptions auth.CookieOptions
	logger        *zap.Logger
}

// Option configures a Gate.
type Option func(g *Gate)

// WithLogger sets the logger used to record rejection reasons.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// WithCookieOptions sets the transport attributes of cookies written by the middleware.
func WithCookieOptions(opts auth.CookieOptions) Option {
	return func(g *Gate) {
		g.cookieOptions = opts
	}
}

// New returns a new Gate.
func New(accessTokens auth.AccessTokenService, refreshTokens auth.RefreshTokenVerifier, store auth.RefreshRecordStore, opts ...Option) *Gate {
	g := &Gate{
		accessTokens:  accessTokens,
		refreshTokens: refreshTokens,
		store:         store,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = zap.NewNop()
	}

	return g
}

// Decide authenticates a request presenting creds.
//
// The access token is always checked first: the refresh store is only consulted
// when the access token is absent or invalid.
// An access token with a valid signature but without an identity counts as invalid.
func (g *Gate) Decide(ctx context.Context, creds Credentials) Decision {
	hasAccessToken, hasRefreshIndex := creds.hasAccessToken(), creds.hasRefreshIndex()

	if !hasAccessToken && !hasRefreshIndex {
		return reject(auth.ErrNotAuthenticated)
	}

	if hasAccessToken {
		claims := g.accessTokens.VerifyAccessToken(ctx, creds.AccessToken.Value())
		if claims.HasValue() && claims.Value().IdentityID != "" {
			return admit(auth.Identity{ID: claims.Value().IdentityID})
		}

		if !hasRefreshIndex {
			return reject(auth.ErrNotAuthenticated)
		}
	}

	return g.rotate(ctx, creds.RefreshIndex.Value())
}

// rotate exchanges the refresh record stored under index for a new access token.
// The refresh record itself is left untouched unless its token fails validation
// or belongs to an identity other than the record owner.
func (g *Gate) rotate(ctx context.Context, index string) Decision {
	found, err := g.store.FindRefreshRecord(ctx, index)
	if err != nil {
		return reject(auth.StoreError(err))
	}

	if !found.HasValue() {
		return reject(auth.ErrSessionUnknown)
	}

	record := found.Value()

	if err := g.refreshTokens.VerifyRefreshToken(ctx, record.Token, record.OwnerID); err != nil {
		if err := g.store.DeleteRefreshRecord(ctx, index); err != nil {
			return reject(auth.StoreError(err))
		}

		return reject(
			auth.ErrSessionRevoked,
			auth.ClearCookie(auth.AccessTokenCookie),
			auth.ClearCookie(auth.RefreshIndexCookie),
		)
	}

	token, err := g.accessTokens.IssueAccessToken(ctx, record.OwnerID)
	if err != nil {
		return reject(fmt.Errorf("issuing access token: %w", err))
	}

	return admit(
		auth.Identity{ID: record.OwnerID},
		auth.SetCookie(auth.AccessTokenCookie, token.Payload, token.ExpiresIn),
	)
}
