package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Len(t, cfg.OAuth.GoogleUserinfoURLs, 3)
	assert.Equal(t, 5*time.Second, cfg.OAuth.HTTPTimeout)
	assert.False(t, cfg.OAuth.GoogleConfigured())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://novels.example/")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("GOOGLE_USERINFO_URLS", "https://a.example/me, ,https://b.example/me")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://novels.example", cfg.App.FrontendURL)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, []string{"https://a.example/me", "https://b.example/me"}, cfg.OAuth.GoogleUserinfoURLs)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.True(t, cfg.OAuth.GoogleConfigured())
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_PASSWORD", "pw")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "real-secret")
	_, err = Load()
	assert.NoError(t, err)
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_RETRY_DELAY", "250ms")

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, int32(25), cfg.MaxConns)

	t.Setenv("DB_PORT", "abc")
	_, err = LoadDatabaseConfig()
	assert.Error(t, err)
}
