package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
postgres:
  dsn: postgres://file
nats:
  url: nats://file
http:
  address: ":9000"
  allowed_origins: ["https://pool.example"]
jwt:
  secret: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.Postgres.DSN)
	assert.Equal(t, "nats://file", cfg.NATS.URL)
	assert.Equal(t, ":9000", cfg.HTTP.Address)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 2.5, cfg.HTTP.RateLimitRPS)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.DefaultTTL)
	assert.Equal(t, defaultMaxWorkers, cfg.Queue.MaxWorkers)
}

func TestLoadConfig_FallsBackToEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("NATS_URL", "nats://env")
	t.Setenv("HTTP_ADDRESS", ":7070")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Address)
	assert.Equal(t, float64(defaultRateLimitRPS), cfg.HTTP.RateLimitRPS)
}

func TestLoadConfig_EnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "no database", env: map[string]string{"DATABASE_URL": "", "NATS_URL": "nats://x"}},
		{name: "no nats", env: map[string]string{"DATABASE_URL": "postgres://x", "NATS_URL": ""}},
		{name: "bad rate", env: map[string]string{"DATABASE_URL": "postgres://x", "NATS_URL": "nats://x", "RATE_LIMIT_RPS": "fast"}},
		{name: "bad ttl", env: map[string]string{"DATABASE_URL": "postgres://x", "NATS_URL": "nats://x", "JWT_DEFAULT_TTL": "a day"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestImportConfig_Location(t *testing.T) {
	loc, err := ImportConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = ImportConfig{Timezone: "Europe/Oslo"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Oslo", loc.String())

	_, err = ImportConfig{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
