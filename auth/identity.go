package auth

import "context"

// Identity is the authenticated caller resolved by the gate.
//
// It is intentionally minimal: the identity ID is the only claim propagated to downstream handlers.
// Anything else a handler needs about the caller should be looked up using the ID.
type Identity struct {
	// ID is the primary identifier of the caller.
	// It is the value of the "id" claim of access tokens and the owner of refresh records.
	ID string `json:"id"`
}

type identityContextKey struct{}

// ContextWithIdentity attaches identity to ctx as the user of the request.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the user of the request attached by ContextWithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)

	return identity, ok
}
