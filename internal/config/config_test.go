package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 3600*time.Second, cfg.Cache.GetCacheTTL())
	assert.Equal(t, 15*time.Second, cfg.Providers.RequestTimeout)
	assert.Equal(t, "https://www.tiktok.com/oembed", cfg.Providers.TikTok.OEmbedURL)
	assert.Equal(t, "https://www.youtube.com/oembed", cfg.Providers.YouTube.OEmbedURL)
	assert.Equal(t, "https://api.apify.com/v2", cfg.Apify.BaseURL)
	assert.Equal(t, "shu8hvrXbJbY3Eb9W", cfg.Apify.InstagramActorID)
	assert.Equal(t, 10*time.Second, cfg.Apify.PollInterval)
	assert.Equal(t, 30, cfg.Apify.MaxAttempts)
	assert.False(t, cfg.Preferences.SkipRestrictedDefault)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("APIFY_API_TOKEN", "from-env")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("RABBITMQ_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig(writeConfig(t, "apify:\n  api_token: from-file\n  poll_interval: 2s\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Apify.APIToken)
	assert.Equal(t, 2*time.Second, cfg.Apify.PollInterval)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitMQ.URL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "database:\n  driver: sqlite\n"},
		{"mongo without uri", "database:\n  driver: mongo\n"},
		{"bad oembed url", "providers:\n  tiktok:\n    oembed_url: ftp://example.com\n"},
		{"negative attempts", "apify:\n  max_attempts: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDatabaseURLs(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}

	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", db.GetDSN())
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable&x-migrations-table=schema_migrations_reelloop", db.GetURL())
}

func TestDevConfigLoads(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "dev.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 6*time.Minute, cfg.Server.WriteTimeout)
}
