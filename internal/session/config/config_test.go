package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, "carebridge", cfg.DatabaseName)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 12*time.Hour, cfg.AccessTokenTTL)
	assert.False(t, cfg.RequireAuth)
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "cassandra")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_MongoDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongodb")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverMongoDB, cfg.StorageDriver)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoDBURI)
}

func TestLoadConfig_RequireAuthNeedsRealSecret(t *testing.T) {
	t.Setenv("REQUIRE_AUTH", "true")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET_KEY", "an-actual-secret")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.RequireAuth)
}
