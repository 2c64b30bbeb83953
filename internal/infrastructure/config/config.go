// Package config loads runtime settings from the environment. A .env file in
// the working directory, when present, is read first; variables already set
// in the environment win over it.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Auth backends.
const (
	AuthLocal   = "local"
	AuthMongo   = "mongo"
	AuthManaged = "managed"
)

// Data backends.
const (
	DataLocal = "local"
	DataMongo = "mongo"
)

type Config struct {
	Port      string        `env:"PORT,         default=8080"`
	Env       string        `env:"ENV,          default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	LogLevel  string        `env:"LOG_LEVEL,    default=info"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,    default=168h"`
	SeedDemo  bool          `env:"SEED_DEMO,    default=false"`

	AuthBackend string `env:"AUTH_BACKEND, default=mongo"`
	DataBackend string `env:"DATA_BACKEND, default=mongo"`

	// LocalStorePath is the device-local key-value file used by the local
	// backends and by vermactl for its session.
	LocalStorePath string `env:"LOCAL_STORE_PATH, default=.verma/store.json"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Managed  ManagedAuthConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=verma_hardware"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type PostgresConfig struct {
	URL string `env:"DATABASE_URL"`
}

// ManagedAuthConfig points at a GoTrue-compatible auth service.
type ManagedAuthConfig struct {
	URL        string `env:"MANAGED_AUTH_URL"`
	AnonKey    string `env:"MANAGED_AUTH_ANON_KEY"`
	ServiceKey string `env:"MANAGED_AUTH_SERVICE_KEY"`
}

// Load reads an optional .env file and then the environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.AuthBackend {
	case AuthLocal:
	case AuthMongo:
		if c.JWTSecret == "" {
			return errors.New("config: JWT_SECRET is required for the mongo auth backend")
		}
	case AuthManaged:
		if c.Managed.URL == "" || c.Managed.AnonKey == "" {
			return errors.New("config: MANAGED_AUTH_URL and MANAGED_AUTH_ANON_KEY are required for the managed auth backend")
		}
		if c.Postgres.URL == "" {
			return errors.New("config: DATABASE_URL is required for the managed auth backend")
		}
	default:
		return fmt.Errorf("config: unknown AUTH_BACKEND %q", c.AuthBackend)
	}

	switch c.DataBackend {
	case DataLocal, DataMongo:
	default:
		return fmt.Errorf("config: unknown DATA_BACKEND %q", c.DataBackend)
	}
	return nil
}

// IsDevelopment reports whether human-readable logs should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// NeedsMongo reports whether any selected backend lives in MongoDB.
func (c *Config) NeedsMongo() bool {
	return c.AuthBackend == AuthMongo || c.DataBackend == DataMongo
}
