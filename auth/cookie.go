package auth

import (
	"net/http"
	"time"
)

// Cookie names of the session contract.
const (
	AccessTokenCookie  = "at"
	RefreshIndexCookie = "rt"
)

// CookieMutation describes a change to a response cookie.
//
// Decisions return mutations instead of touching the response,
// so that they can be tested independently of the transport.
type CookieMutation struct {
	Name  string
	Value string

	// MaxAge is only meaningful when Clear is false.
	MaxAge time.Duration

	Clear bool
}

// SetCookie returns a mutation setting an http-only, same-site=lax cookie.
func SetCookie(name string, value string, maxAge time.Duration) CookieMutation {
	return CookieMutation{
		Name:   name,
		Value:  value,
		MaxAge: maxAge,
	}
}

// ClearCookie returns a mutation removing a cookie from the client.
func ClearCookie(name string) CookieMutation {
	return CookieMutation{
		Name:  name,
		Clear: true,
	}
}

// CookieOptions are transport attributes applied to every cookie written by ApplyCookies.
type CookieOptions struct {
	// Secure restricts cookies to HTTPS.
	Secure bool
}

// ApplyCookies writes mutations to the response headers.
// It must be called before the response status is written.
func ApplyCookies(w http.ResponseWriter, mutations []CookieMutation, opts CookieOptions) {
	for _, m := range mutations {
		http.SetCookie(w, m.httpCookie(opts))
	}
}

func (m CookieMutation) httpCookie(opts CookieOptions) *http.Cookie {
	cookie := &http.Cookie{
		Name:     m.Name,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   opts.Secure,
	}

	if m.Clear {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)

		return cookie
	}

	cookie.Value = m.Value
	cookie.MaxAge = int(m.MaxAge / time.Second)
	cookie.Expires = time.Now().Add(m.MaxAge)

	return cookie
}
