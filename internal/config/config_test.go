package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPServer.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "static", cfg.Venue.Provider)
	assert.Equal(t, 5, cfg.Venue.MaxResults)
	assert.Equal(t, 5*time.Second, cfg.Notify.Timeout)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: prod
log_level: warn
http_server:
  address: ":9090"
storage:
  driver: postgres
  dsn: postgres://kanji@localhost/kanji?sslmode=disable
venue:
  provider: hotpepper
  hotpepper_api_key: abc
  max_results: 3
`), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.HTTPServer.Address)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "hotpepper", cfg.Venue.Provider)
	assert.Equal(t, 3, cfg.Venue.MaxResults)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout, "defaults fill unset fields")
}

func TestLoadRejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without dsn", map[string]string{"STORAGE_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"gemini without key", map[string]string{"VENUE_PROVIDER": "gemini"}},
		{"unknown provider", map[string]string{"VENUE_PROVIDER": "yelp"}},
		{"queue without redis", map[string]string{"NOTIFY_QUEUE": "true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})
}
