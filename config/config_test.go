package config

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/distribution-auth/sessiongate/auth"
	"github.com/distribution-auth/sessiongate/auth/refresh"
)

const configTemplate = `
accessToken:
  type: jwt
  config:
    expiration: 15m
refreshToken:
  type: jwt
  config:
    expiration: 168h
store:
  type: %s
  config: %s
passwordAuthenticator:
  type: user
  config:
    entries:
      - enabled: true
        username: alice
        passwordHash: %q
        id: u42
cookies:
  secure: true
publicRoutes:
  - login
`

func loadConfig(t *testing.T, storeType string, storeConfig string) Config {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	config, err := Load(strings.NewReader(fmt.Sprintf(configTemplate, storeType, storeConfig, string(passwordHash))))
	require.NoError(t, err)

	return config
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	config := loadConfig(t, "memory", "{}")

	require.NoError(t, config.Validate())

	assert.True(t, config.Cookies.Secure)
	assert.Equal(t, []string{"login"}, config.PublicRoutes)

	t.Run("AccessToken", func(t *testing.T) {
		service, err := config.AccessToken.Config.CreateAccessTokenService()
		require.NoError(t, err)

		token, err := service.IssueAccessToken(ctx, "u42")
		require.NoError(t, err)

		assert.Equal(t, 15*time.Minute, token.ExpiresIn)
		assert.True(t, service.VerifyAccessToken(ctx, token.Payload).HasValue())
	})

	t.Run("RefreshToken", func(t *testing.T) {
		service, err := config.RefreshToken.Config.CreateRefreshTokenService()
		require.NoError(t, err)

		token, err := service.IssueRefreshToken(ctx, "u42")
		require.NoError(t, err)

		assert.Equal(t, 168*time.Hour, token.ExpiresIn)
		assert.NoError(t, service.VerifyRefreshToken(ctx, token.Payload, "u42"))
	})

	t.Run("PasswordAuthenticator", func(t *testing.T) {
		authenticator, err := config.PasswordAuthenticator.Config.CreatePasswordAuthenticator()
		require.NoError(t, err)

		identity, err := authenticator.Authenticate(ctx, "alice", "password")
		require.NoError(t, err)
		assert.Equal(t, auth.Identity{ID: "u42"}, identity)

		_, err = authenticator.Authenticate(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
	})

	t.Run("Store", func(t *testing.T) {
		repository, err := config.Store.Config.CreateRefreshRecordRepository(ctx)
		require.NoError(t, err)

		assert.IsType(t, &refresh.InMemoryRefreshRecordRepository{}, repository)
	})
}

func TestLoad_RedisStore(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)

	config := loadConfig(t, "redis", fmt.Sprintf("{addrs: [%q], prefix: 'test:'}", server.Addr()))
	require.NoError(t, config.Validate())

	repository, err := config.Store.Config.CreateRefreshRecordRepository(ctx)
	require.NoError(t, err)
	defer repository.(*refresh.RedisRefreshRecordRepository).Close()

	err = repository.SaveRefreshRecord(ctx, auth.RefreshRecord{Index: "idx", Token: "token", OwnerID: "u42"}, time.Hour)
	require.NoError(t, err)

	assert.True(t, server.Exists("test:idx"))
}

func TestLoad_PostgresStore(t *testing.T) {
	config := loadConfig(t, "postgres", "{dsn: 'postgres://localhost/sessions'}")
	require.NoError(t, config.Validate())

	store := config.Store.Config.(postgresStore)
	assert.True(t, store.Migrate)
	assert.Equal(t, "postgres://localhost/sessions", store.DSN)

	config = loadConfig(t, "postgres", "{dsn: 'postgres://localhost/sessions', migrate: false}")
	assert.False(t, config.Store.Config.(postgresStore).Migrate)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{
			name:  "UnknownAccessTokenType",
			input: "accessToken: {type: opaque}",
			err:   "unknown access token type: opaque",
		},
		{
			name:  "UnknownRefreshTokenType",
			input: "refreshToken: {type: opaque}",
			err:   "unknown refresh token type: opaque",
		},
		{
			name:  "UnknownStoreType",
			input: "store: {type: etcd}",
			err:   "unknown store type: etcd",
		},
		{
			name:  "UnknownPasswordAuthenticatorType",
			input: "passwordAuthenticator: {type: ldap}",
			err:   "unknown password authenticator type: ldap",
		},
		{
			name:  "UnusedKey",
			input: "store: {type: redis, config: {addr: localhost}}",
			err:   "addr",
		},
		{
			name:  "InvalidDuration",
			input: "accessToken: {type: jwt, config: {expiration: soon}}",
			err:   "invalid duration",
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(test.input))

			require.Error(t, err)
			assert.Contains(t, err.Error(), test.err)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			AccessToken:           AccessToken{Config: jwtAccessToken{}},
			RefreshToken:          RefreshToken{Config: jwtRefreshToken{}},
			Store:                 Store{Config: memoryStore{}},
			PasswordAuthenticator: PasswordAuthenticator{Config: &userAuthenticator{}},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		modify func(c *Config)
		err    string
	}{
		{
			name:   "MissingAccessToken",
			modify: func(c *Config) { c.AccessToken.Config = nil },
			err:    "access token type is required",
		},
		{
			name:   "NegativeAccessTokenExpiration",
			modify: func(c *Config) { c.AccessToken.Config = jwtAccessToken{Expiration: -time.Second} },
			err:    "access token: jwt: expiration must not be negative",
		},
		{
			name:   "MissingRefreshToken",
			modify: func(c *Config) { c.RefreshToken.Config = nil },
			err:    "refresh token type is required",
		},
		{
			name:   "MissingStore",
			modify: func(c *Config) { c.Store.Config = nil },
			err:    "store type is required",
		},
		{
			name:   "RedisWithoutAddrs",
			modify: func(c *Config) { c.Store.Config = redisStore{} },
			err:    "store: redis: addrs is required",
		},
		{
			name:   "PostgresWithoutDSN",
			modify: func(c *Config) { c.Store.Config = postgresStore{} },
			err:    "store: postgres: dsn is required",
		},
		{
			name:   "MissingPasswordAuthenticator",
			modify: func(c *Config) { c.PasswordAuthenticator.Config = nil },
			err:    "password authenticator type is required",
		},
		{
			name: "UserWithoutPasswordHash",
			modify: func(c *Config) {
				c.PasswordAuthenticator.Config = &userAuthenticator{Entries: []user{{Username: "alice"}}}
			},
			err: "password authenticator: user authenticator: entry[0]: password hash is required",
		},
		{
			name:   "EmptyPublicRoute",
			modify: func(c *Config) { c.PublicRoutes = []string{"login", ""} },
			err:    "public routes: route[1]: name is required",
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			config := valid()
			test.modify(&config)

			assert.EqualError(t, config.Validate(), test.err)
		})
	}
}
