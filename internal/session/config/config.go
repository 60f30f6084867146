package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// Storage driver names
const (
	DriverMemory  = "memory"
	DriverMongoDB = "mongodb"
)

const devSecretKey = "carebridge-dev-secret-change-me"

// Config holds all configuration for the session module.
type Config struct {
	// Storage
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	MongoDBURI    string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName  string `env:"DATABASE_NAME" envDefault:"carebridge"`

	// Redis alert event store; empty address disables replay
	RedisAddr     string `env:"REDIS_ADDR" envDefault:""`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Caregiver tokens
	JWTSecretKey   string        `env:"JWT_SECRET_KEY" envDefault:"carebridge-dev-secret-change-me"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"carebridge"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"12h"`

	// RequireAuth gates mutating session routes behind a bearer token whose
	// refCode claim matches the path code. Off by default: possession of the
	// reference code is the capability.
	RequireAuth bool `env:"REQUIRE_AUTH" envDefault:"false"`
}

// LoadConfig loads configuration from environment variables and applies
// defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load session configuration from environment: " + err.Error())
	}

	if cfg.StorageDriver != DriverMemory && cfg.StorageDriver != DriverMongoDB {
		return nil, errors.New("storage_driver must be one of 'memory' or 'mongodb'")
	}
	if cfg.RequireAuth && cfg.JWTSecretKey == devSecretKey {
		return nil, errors.New("jwt_secret_key must be set when require_auth is enabled")
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 12 * time.Hour
	}

	return cfg, nil
}

// DefaultConfig returns the configuration used when the environment carries
// no overrides. Useful for tests.
func DefaultConfig() *Config {
	return &Config{
		StorageDriver:  DriverMemory,
		MongoDBURI:     "mongodb://localhost:27017",
		DatabaseName:   "carebridge",
		JWTSecretKey:   devSecretKey,
		JWTIssuer:      "carebridge",
		AccessTokenTTL: 12 * time.Hour,
	}
}
