package gate

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/distribution-auth/sessiongate/auth"
)

// Middleware authenticates every request routed to a route that requires authentication.
//
// Admitted requests carry the caller in their context (see auth.IdentityFromContext).
// Rejected requests receive 401 Unauthorized, whatever the reason.
// Cookie mutations of the decision are applied in both cases.
//
// It must be installed with mux.Router.Use so that the matched route is known.
func (g *Gate) Middleware(routes RouteMarker) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !routes.RequiresAuthentication(routeName(r)) {
				next.ServeHTTP(w, r)

				return
			}

			decision := g.Decide(r.Context(), CredentialsFromRequest(r))

			auth.ApplyCookies(w, decision.Cookies, g.cookieOptions)

			if !decision.Admitted {
				g.logRejection(r, decision.Reason)

				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), decision.Identity)))
		})
	}
}

func routeName(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return ""
	}

	return route.GetName()
}

func (g *Gate) logRejection(r *http.Request, reason error) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(reason),
	}

	switch {
	case errors.Is(reason, auth.ErrNotAuthenticated), errors.Is(reason, auth.ErrSessionUnknown):
		g.logger.Debug("request not admitted", fields...)
	case errors.Is(reason, auth.ErrSessionRevoked):
		g.logger.Warn("request not admitted: session revoked", fields...)
	default:
		g.logger.Error("request not admitted", fields...)
	}
}
