package authn

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/maps"

	"github.com/distribution-auth/sessiongate/auth"
)

// User is an entry of a UserAuthenticator.
type User struct {
	Enabled      bool
	Username     string
	PasswordHash string

	// ID is the identity issued for the user. Defaults to Username.
	ID string
}

// StaticPasswordAuthenticator authenticates an identity from a static list of username/password hash pairs.
type StaticPasswordAuthenticator struct {
	users map[string]string
}

// NewStaticPasswordAuthenticator returns a new StaticPasswordAuthenticator.
func NewStaticPasswordAuthenticator(users map[string]string) StaticPasswordAuthenticator {
	return StaticPasswordAuthenticator{
		users: maps.Clone(users),
	}
}

// Authenticate implements the auth.PasswordAuthenticator interface.
func (a StaticPasswordAuthenticator) Authenticate(_ context.Context, username string, password string) (auth.Identity, error) {
	passwordHash, ok := a.users[username]
	if !ok {
		// timing attack paranoia
		bcrypt.CompareHashAndPassword([]byte{}, []byte(password))

		return auth.Identity{}, auth.ErrAuthenticationFailed
	}

	err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if err != nil {
		return auth.Identity{}, auth.ErrAuthenticationFailed
	}

	return auth.Identity{
		ID: username,
	}, nil
}

// UserAuthenticator authenticates users from a list of entries that can be disabled individually.
type UserAuthenticator struct {
	users map[string]User
}

// NewUserAuthenticator returns a new UserAuthenticator.
func NewUserAuthenticator(entries []User) UserAuthenticator {
	users := make(map[string]User, len(entries))

	for _, entry := range entries {
		users[entry.Username] = entry
	}

	return UserAuthenticator{
		users: users,
	}
}

// Authenticate implements the auth.PasswordAuthenticator interface.
func (a UserAuthenticator) Authenticate(_ context.Context, username string, password string) (auth.Identity, error) {
	user, ok := a.users[username]
	if !ok || !user.Enabled {
		// timing attack paranoia
		bcrypt.CompareHashAndPassword([]byte{}, []byte(password))

		return auth.Identity{}, auth.ErrAuthenticationFailed
	}

	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return auth.Identity{}, auth.ErrAuthenticationFailed
	}

	id := user.ID
	if id == "" {
		id = user.Username
	}

	return auth.Identity{
		ID: id,
	}, nil
}
