package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "immerse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
server:
  host: "0.0.0.0"
  port: 9090
  read_timeout: "5s"
  language_cache_size: 16

database:
  path: "/tmp/reader.db"

log:
  level: "debug"
  format: "json"

import:
  workers: 8
  page_size: 500

segment:
  tables_dir: "./tables"
  order: "longest"
`

func TestLoad_ValidYAML(t *testing.T) {
	t.Setenv("IMMERSE_CONFIG", "")
	cfg, err := Load(writeYAML(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout, "default applies to missing keys")
	assert.Equal(t, 16, cfg.Server.LanguageCacheSize)
	assert.Equal(t, "/tmp/reader.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8, cfg.Import.Workers)
	assert.Equal(t, 50, cfg.Import.BatchSize)
	assert.Equal(t, 500, cfg.Import.PageSize)
	assert.Equal(t, "./tables", cfg.Segment.TablesDir)
	assert.Equal(t, wordtree.LongestFirst, cfg.Segment.Order)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	t.Setenv("IMMERSE_CONFIG", "")
	t.Setenv("IMMERSE_SERVER_PORT", "7070")
	t.Setenv("IMMERSE_DB_PATH", "env.db")

	cfg, err := Load(writeYAML(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env.db", cfg.Database.Path)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("IMMERSE_CONFIG", "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, "immerse.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Import.Workers)
	assert.Equal(t, 2000, cfg.Import.PageSize)
	assert.Equal(t, wordtree.SourceOrder, cfg.Segment.Order)
}

func TestLoad_PathFromEnv(t *testing.T) {
	t.Setenv("IMMERSE_CONFIG", writeYAML(t, validYAML))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeYAML(t, "server: [not, a, map"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("IMMERSE_CONFIG", "")
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"cache size", func(c *Config) { c.Server.LanguageCacheSize = 0 }},
		{"db path", func(c *Config) { c.Database.Path = " " }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"workers", func(c *Config) { c.Import.Workers = 0 }},
		{"batch size", func(c *Config) { c.Import.BatchSize = -1 }},
		{"page size", func(c *Config) { c.Import.PageSize = 0 }},
		{"fetch timeout", func(c *Config) { c.Import.FetchTimeout = 0 }},
		{"order", func(c *Config) { c.Segment.OrderRaw = "random" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeYAML(t, validYAML))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
