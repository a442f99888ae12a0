package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "bookshelf", cfg.MinIO.Bucket)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxImageBytes)
	assert.Equal(t, int64(40_000_000), cfg.Upload.MaxImagePixels)
	assert.Equal(t, 30*time.Second, cfg.Breaker.Timeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("JWT_ACCESS_EXPIRY", "30")
	t.Setenv("STORAGE_BREAKER_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 30, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, 5*time.Second, cfg.Breaker.Timeout)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("MINIO_USE_SSL", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.False(t, cfg.MinIO.UseSSL)
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestValidate_BreakerRatio(t *testing.T) {
	t.Setenv("STORAGE_BREAKER_FAILURE_RATIO", "1.5")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_MAX_CONN_LIFETIME", "10m")

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)

	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.MaxConnLifetime)
	assert.Equal(t, int32(25), cfg.MaxConns)
}

func TestLoadDatabaseConfig_Invalid(t *testing.T) {
	t.Setenv("DB_PORT", "abc")
	_, err := LoadDatabaseConfig()
	assert.ErrorContains(t, err, "DB_PORT")

	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_MIN_CONNECTIONS", "50")
	_, err = LoadDatabaseConfig()
	assert.ErrorContains(t, err, "DB_MIN_CONNECTIONS")
}
