package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/schema"
)

// Set a Decoder instance as a package global, because it caches
// meta-data about structs, and an instance can be shared safely.
var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}()

// SessionServer exposes a SessionService over HTTP using the session cookies.
type SessionServer struct {
	Service SessionService
	Cookies CookieOptions
}

type loginForm struct {
	Username string `schema:"username,required"`
	Password string `schema:"password,required"`
}

type userResponse struct {
	User Identity `json:"user"`
}

func handleError(err error, w http.ResponseWriter) {
	if errors.Is(err, ErrAuthenticationFailed) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

		return
	}

	if errors.Is(err, ErrStoreUnavailable) {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)

		return
	}

	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeUser(w http.ResponseWriter, identity Identity) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userResponse{User: identity})
}

// LoginHandler opens a session from a username/password form.
func (s SessionServer) LoginHandler(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var form loginForm

	err = decoder.Decode(&form, r.PostForm)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	response, err := s.Service.Login(r.Context(), LoginRequest{
		Username: form.Username,
		Password: form.Password,
	})
	if err != nil {
		handleError(err, w)
		return
	}

	ApplyCookies(w, response.Cookies, s.Cookies)
	writeUser(w, response.Identity)
}

// LogoutHandler closes the session of the request and clears the session cookies.
func (s SessionServer) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var request LogoutRequest

	if cookie, err := r.Cookie(RefreshIndexCookie); err == nil {
		request.RefreshIndex = cookie.Value
	}

	response, err := s.Service.Logout(r.Context(), request)
	if err != nil {
		handleError(err, w)
		return
	}

	ApplyCookies(w, response.Cookies, s.Cookies)
	w.WriteHeader(http.StatusNoContent)
}

// MeHandler responds with the user of the request.
func (s SessionServer) MeHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	writeUser(w, identity)
}
