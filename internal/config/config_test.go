package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: "9090"
database:
  driver: "sqlite"
  sqlite:
    path: "test.db"
content:
  cascade:
    transactional: false
cors:
  allowed_origins: ["http://a.example", "http://b.example"]
ratelimit:
  ttl: "5m"
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))
	return path
}

func TestLoadReadsFileAndDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, Load(writeConfig(t), &cfg))

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "test.db", cfg.Database.SQLite.Path)
	assert.False(t, cfg.Content.Cascade.Transactional)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.TTL)

	// defaults
	assert.Equal(t, 100, cfg.Content.Search.MaxLimit)
	assert.Equal(t, "contenthub-tree-events", cfg.Kafka.Topic)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CONTENTHUB_SERVER_PORT", "7070")
	t.Setenv("CONTENTHUB_DATABASE_DRIVER", "mongo")

	var cfg Config
	require.NoError(t, Load(writeConfig(t), &cfg))

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "mongo", cfg.Database.Driver)
}

func TestLoadMissingFile(t *testing.T) {
	var cfg Config
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	assert.Error(t, err)
}
