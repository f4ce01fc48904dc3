package gate

import (
	"net/http"

	"github.com/distribution-auth/sessiongate/auth"
	"github.com/distribution-auth/sessiongate/pkg/option"
)

// CredentialsFromRequest reads the session cookies of r.
func CredentialsFromRequest(r *http.Request) Credentials {
	return Credentials{
		AccessToken:  cookieValue(r, auth.AccessTokenCookie),
		RefreshIndex: cookieValue(r, auth.RefreshIndexCookie),
	}
}

func cookieValue(r *http.Request, name string) option.Option[string] {
	cookie, err := r.Cookie(name)
	if err != nil {
		return option.None[string]()
	}

	return option.Some(cookie.Value)
}
