package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/distribution-auth/sessiongate/auth"
	"github.com/distribution-auth/sessiongate/auth/token/jwt"
)

// AccessToken is the configuration for an auth.AccessTokenService.
type AccessToken struct {
	Config AccessTokenServiceFactory
}

func (c *AccessToken) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig rawConfig

	err := value.Decode(&rawConfig)
	if err != nil {
		return err
	}

	var config AccessTokenServiceFactory

	switch rawConfig.Type {
	case "jwt":
		var factory jwtAccessToken

		err := decode(rawConfig.Config, &factory)
		if err != nil {
			return err
		}

		config = factory

	default:
		return fmt.Errorf("unknown access token type: %s", rawConfig.Type)
	}

	c.Config = config

	return nil
}

// AccessTokenServiceFactory creates a new auth.AccessTokenService.
type AccessTokenServiceFactory interface {
	CreateAccessTokenService() (auth.AccessTokenService, error)
	Validate() error
}

type jwtAccessToken struct {
	// PrivateKeyFile is optional: a new key is generated for every process when empty.
	PrivateKeyFile string        `mapstructure:"privateKeyFile"`
	Expiration     time.Duration `mapstructure:"expiration"`
}

func (c jwtAccessToken) CreateAccessTokenService() (auth.AccessTokenService, error) {
	signingKey, err := loadSigningKey(c.PrivateKeyFile)
	if err != nil {
		return nil, err
	}

	return jwt.NewAccessTokenIssuer(signingKey, jwt.WithExpiration(c.Expiration)), nil
}

func (c jwtAccessToken) Validate() error {
	if c.Expiration < 0 {
		return fmt.Errorf("access token: jwt: expiration must not be negative")
	}

	return nil
}
