package config

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/distribution-auth/sessiongate/auth"
	"github.com/distribution-auth/sessiongate/auth/refresh"
)

// Store is the configuration for an auth.RefreshRecordRepository.
type Store struct {
	Config StoreFactory
}

func (c *Store) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig rawConfig

	err := value.Decode(&rawConfig)
	if err != nil {
		return err
	}

	var config StoreFactory

	switch rawConfig.Type {
	case "memory":
		config = memoryStore{}

	case "redis":
		var factory redisStore

		err := decode(rawConfig.Config, &factory)
		if err != nil {
			return err
		}

		config = factory

	case "postgres":
		factory := postgresStore{Migrate: true}

		err := decode(rawConfig.Config, &factory)
		if err != nil {
			return err
		}

		config = factory

	default:
		return fmt.Errorf("unknown store type: %s", rawConfig.Type)
	}

	c.Config = config

	return nil
}

// StoreFactory creates a new auth.RefreshRecordRepository.
//
// Repositories holding external resources implement io.Closer.
type StoreFactory interface {
	CreateRefreshRecordRepository(ctx context.Context) (auth.RefreshRecordRepository, error)
	Validate() error
}

type memoryStore struct{}

func (memoryStore) CreateRefreshRecordRepository(_ context.Context) (auth.RefreshRecordRepository, error) {
	return &refresh.InMemoryRefreshRecordRepository{}, nil
}

func (memoryStore) Validate() error {
	return nil
}

type redisStore struct {
	Addrs    []string `mapstructure:"addrs"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	DB       int      `mapstructure:"db"`
	Prefix   string   `mapstructure:"prefix"`
}

func (c redisStore) CreateRefreshRecordRepository(ctx context.Context) (auth.RefreshRecordRepository, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    c.Addrs,
		Username: c.Username,
		Password: c.Password,
		DB:       c.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()

		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return refresh.NewRedisRefreshRecordRepository(client, c.Prefix), nil
}

func (c redisStore) Validate() error {
	if len(c.Addrs) == 0 {
		return fmt.Errorf("store: redis: addrs is required")
	}

	if c.DB < 0 {
		return fmt.Errorf("store: redis: db must not be negative")
	}

	return nil
}

type postgresStore struct {
	DSN string `mapstructure:"dsn"`

	// Migrate applies the embedded schema on startup. Defaults to true.
	Migrate bool `mapstructure:"migrate"`
}

func (c postgresStore) CreateRefreshRecordRepository(ctx context.Context) (auth.RefreshRecordRepository, error) {
	db, err := refresh.OpenPostgres(ctx, c.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if c.Migrate {
		if err := refresh.RunMigrations(ctx, db); err != nil {
			db.Close()

			return nil, fmt.Errorf("migrating postgres: %w", err)
		}
	}

	return refresh.NewPostgresRefreshRecordRepository(db, clockwork.NewRealClock()), nil
}

func (c postgresStore) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("store: postgres: dsn is required")
	}

	return nil
}
