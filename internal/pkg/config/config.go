package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	// CORSOrigins is a comma separated allow-list.
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`

	Auth        AuthConfig
	Mongo       MongoConfig
	Redis       RedisConfig
	Idempotency IdempotencyConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	JWTTTL     time.Duration `env:"JWT_TTL,     default=24h"`
	JWTIssuer  string        `env:"JWT_ISSUER,  default=inventory-api"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`

	// AdminEmail names the account promoted to admin at startup, or on
	// registration when it does not exist yet.
	AdminEmail string `env:"ADMIN_EMAIL"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=inventory_db"`
	// Transactions enables multi-document transactions. Requires a replica set.
	Transactions bool `env:"MONGO_TRANSACTIONS, default=false"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type IdempotencyConfig struct {
	TTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

// ErrMissingSecret is returned by Load when JWT_SECRET is unset or empty.
var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("config: %w", ErrMissingSecret)
	}
	return &cfg, nil
}
