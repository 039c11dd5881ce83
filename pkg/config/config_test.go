package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "pattern", cfg.Annotator.Matcher)
	assert.Equal(t, "static", cfg.Definitions.Source)
	assert.Equal(t, "article-events", cfg.Kafka.Topics.ArticleEvents)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 7000
annotator:
  matcher: automaton
  buildConcurrency: 2
definitions:
  source: postgres
  lookupTimeout: 500ms
redis:
  cacheTTL: 1m
`)
	t.Setenv("NA_SERVER_PORT", "7100")
	t.Setenv("NA_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, "automaton", cfg.Annotator.Matcher)
	assert.Equal(t, 2, cfg.Annotator.BuildConcurrency)
	assert.Equal(t, "postgres", cfg.Definitions.Source)
	assert.Equal(t, 500*time.Millisecond, cfg.Definitions.LookupTimeout)
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	// untouched sections keep defaults
	assert.Equal(t, 16, cfg.Annotator.MaxSections)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := map[string]string{
		"unknown matcher":      "annotator:\n  matcher: fuzzy\n",
		"unknown source":       "definitions:\n  source: wiki\n",
		"static without path":  "definitions:\n  source: static\n  staticPath: \"\"\n",
		"zero concurrency":     "annotator:\n  buildConcurrency: 0\n",
		"rate limit no window": "rateLimit:\n  enabled: true\n  window: 0s\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
