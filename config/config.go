package config

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config collects all configuration options.
type Config struct {
	AccessToken           AccessToken           `yaml:"accessToken"`
	RefreshToken          RefreshToken          `yaml:"refreshToken"`
	Store                 Store                 `yaml:"store"`
	PasswordAuthenticator PasswordAuthenticator `yaml:"passwordAuthenticator"`
	Cookies               Cookies               `yaml:"cookies"`

	// PublicRoutes lists the names of routes that bypass the session gate.
	PublicRoutes []string `yaml:"publicRoutes"`
}

// Cookies configures the attributes of session cookies.
type Cookies struct {
	Secure bool `yaml:"secure"`
}

// Load reads configuration from YAML.
func Load(r io.Reader) (Config, error) {
	var config Config

	err := yaml.NewDecoder(r).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	return config, nil
}

// LoadFile reads configuration from a YAML file.
func LoadFile(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	return Load(file)
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.AccessToken.Config == nil {
		return fmt.Errorf("access token type is required")
	}

	if err := c.AccessToken.Config.Validate(); err != nil {
		return err
	}

	if c.RefreshToken.Config == nil {
		return fmt.Errorf("refresh token type is required")
	}

	if err := c.RefreshToken.Config.Validate(); err != nil {
		return err
	}

	if c.Store.Config == nil {
		return fmt.Errorf("store type is required")
	}

	if err := c.Store.Config.Validate(); err != nil {
		return err
	}

	if c.PasswordAuthenticator.Config == nil {
		return fmt.Errorf("password authenticator type is required")
	}

	if err := c.PasswordAuthenticator.Config.Validate(); err != nil {
		return err
	}

	for i, route := range c.PublicRoutes {
		if route == "" {
			return fmt.Errorf("public routes: route[%d]: name is required", i)
		}
	}

	return nil
}

// rawConfig is a general struct to be used by other config structs to unmarshal yaml config first.
type rawConfig struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config"`
}

// decode decodes the generic config map of a rawConfig into a typed factory.
func decode(input map[string]interface{}, output interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      output,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}
