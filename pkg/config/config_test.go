package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/jaundice/pkg/dictionary"
	"github.com/xhad/jaundice/pkg/processor"
)

func TestLoadConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
server:
  addr: ":9090"
  write_timeout: 45s

pipeline:
  fetch_timeout: 5s
  process_timeout: 1500ms

fetcher:
  user_agent: "test-agent"
  rate_limit: 4
  burst: 2

dictionaries:
  charged: "/srv/dict"
  lemmas: "/srv/lemmas.tsv.gz"
  fallback: "snowball"

database:
  url: "postgres://localhost:5432/jaundice"
  table_name: "scores"

log:
  level: "debug"
  format: "json"

ui:
  progress: false
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, ":9090", config.Server.Addr)
	assert.Equal(t, 45*time.Second, config.Server.WriteTimeout)
	assert.Equal(t, 5*time.Second, config.Pipeline.FetchTimeout)
	assert.Equal(t, 1500*time.Millisecond, config.Pipeline.ProcessTimeout)
	assert.Equal(t, "test-agent", config.Fetcher.UserAgent)
	assert.Equal(t, 4.0, config.Fetcher.RateLimit)
	assert.Equal(t, 2, config.Fetcher.Burst)
	assert.Equal(t, "/srv/dict", config.Dictionaries.Charged)
	assert.Equal(t, "snowball", config.Dictionaries.Fallback)
	assert.Equal(t, "scores", config.Database.TableName)
	assert.Equal(t, "json", config.Log.Format)
	assert.True(t, config.UI.Color)
	assert.False(t, config.UI.Progress)

	// untouched sections fall back to defaults
	assert.Equal(t, 5*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, int64(10*1024*1024), config.Fetcher.MaxBodyBytes)
	assert.Empty(t, config.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, config.Pipeline.FetchTimeout)
	assert.Equal(t, 3*time.Second, config.Pipeline.ProcessTimeout)
	assert.Equal(t, "charged_dict/negative_words.txt", config.Dictionaries.Charged)
	assert.Equal(t, "snowball", config.Dictionaries.Fallback)
	assert.True(t, config.UI.Color)
	assert.True(t, config.UI.Progress)
}

func TestDefaultChargedWordsAreNegativeOnly(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	// the shipped word lists live at the repository root
	charged, err := dictionary.Load(filepath.Join("..", "..", config.Dictionaries.Charged))
	require.NoError(t, err)

	assert.True(t, charged.Contains("аутсайдер"))
	assert.False(t, charged.Contains("великолепный"))
	assert.False(t, charged.Contains("восторг"))

	words := []string{"великолепный", "восторг", "статья", "город"}
	assert.Equal(t, 0.0, processor.CalculateJaundiceRate(words, charged))
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(c *Config)
		errorMessages []string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name: "invalid timeouts",
			mutate: func(c *Config) {
				c.Pipeline.FetchTimeout = 0
				c.Pipeline.ProcessTimeout = -time.Second
			},
			errorMessages: []string{
				"pipeline.fetch_timeout: fetch_timeout must be positive",
				"pipeline.process_timeout: process_timeout must be positive",
			},
		},
		{
			name: "invalid fetcher and dictionaries",
			mutate: func(c *Config) {
				c.Fetcher.RateLimit = -1
				c.Dictionaries.Fallback = "stemmer"
			},
			errorMessages: []string{
				"fetcher.rate_limit: rate_limit must not be negative",
				"dictionaries.fallback: unknown fallback",
			},
		},
		{
			name: "invalid database",
			mutate: func(c *Config) {
				c.Database.URL = "mysql://localhost/db"
				c.Database.TableName = "scores; DROP TABLE x"
			},
			errorMessages: []string{
				"database.url: invalid database URL",
				"database.table_name: table_name must be a plain SQL identifier",
			},
		},
		{
			name: "invalid log",
			mutate: func(c *Config) {
				c.Log.Level = "verbose"
				c.Log.Format = "xml"
			},
			errorMessages: []string{
				"log.level: unknown log level",
				"log.format: unknown log format",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := getDefaultConfig()
			require.NoError(t, err)
			tt.mutate(config)

			errors := config.Validate()
			require.Len(t, errors, len(tt.errorMessages))
			for i, msg := range tt.errorMessages {
				assert.Contains(t, errors[i].Error(), msg)
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("JAUNDICE_ADDR", ":7070")
	t.Setenv("DATABASE_URL", "postgres://env-db:5432/test")
	t.Setenv("JAUNDICE_LOG_LEVEL", "warn")
	t.Setenv("JAUNDICE_CHARGED_DICT", "/env/dict")

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, ":7070", config.Server.Addr)
	assert.Equal(t, "postgres://env-db:5432/test", config.Database.URL)
	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "/env/dict", config.Dictionaries.Charged)
}
