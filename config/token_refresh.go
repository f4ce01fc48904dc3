package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/distribution-auth/sessiongate/auth"
	"github.com/distribution-auth/sessiongate/auth/token/jwt"
)

// RefreshToken is the configuration for an auth.RefreshTokenService.
type RefreshToken struct {
	Config RefreshTokenServiceFactory
}

func (c *RefreshToken) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig rawConfig

	err := value.Decode(&rawConfig)
	if err != nil {
		return err
	}

	var config RefreshTokenServiceFactory

	switch rawConfig.Type {
	case "jwt":
		var factory jwtRefreshToken

		err := decode(rawConfig.Config, &factory)
		if err != nil {
			return err
		}

		config = factory

	default:
		return fmt.Errorf("unknown refresh token type: %s", rawConfig.Type)
	}

	c.Config = config

	return nil
}

// RefreshTokenServiceFactory creates a new auth.RefreshTokenService.
type RefreshTokenServiceFactory interface {
	CreateRefreshTokenService() (auth.RefreshTokenService, error)
	Validate() error
}

type jwtRefreshToken struct {
	// PrivateKeyFile should be set when refresh records outlive the process (redis, postgres).
	PrivateKeyFile string        `mapstructure:"privateKeyFile"`
	Expiration     time.Duration `mapstructure:"expiration"`
}

func (c jwtRefreshToken) CreateRefreshTokenService() (auth.RefreshTokenService, error) {
	signingKey, err := loadSigningKey(c.PrivateKeyFile)
	if err != nil {
		return nil, err
	}

	return jwt.NewRefreshTokenIssuer(signingKey, jwt.WithExpiration(c.Expiration)), nil
}

func (c jwtRefreshToken) Validate() error {
	if c.Expiration < 0 {
		return fmt.Errorf("refresh token: jwt: expiration must not be negative")
	}

	return nil
}
