package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("CORPORA_DB_PASSWORD", "s3cret")

	path := writeFile(t, "config.yaml", `
database:
  user: corpora
  password: ${CORPORA_DB_PASSWORD}
fetch:
  retry:
    max_attempts: 3
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 3, cfg.Fetch.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Fetch.Retry.InitialBackoff)
	assert.Equal(t, 400, cfg.Extract.MinTextLength)
	assert.Equal(t, []string{"Wikinews Shorts"}, cfg.Sample.DigestPatterns)
	assert.Equal(t, DefaultUserAgent, cfg.Fetch.UserAgent)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Contains(t, cfg.Database.DSN(), "dbname=corpora")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config file")
}

func TestLoadSources_JSON(t *testing.T) {
	path := writeFile(t, "sources.json", `{
		"The New York Times": [
			"http://www.nytimes.com/services/xml/rss/nyt/World.xml",
			"http://www.nytimes.com/services/xml/rss/nyt/politics.xml"
		],
		"Foreign Policy": ["http://www.foreignpolicy.com/rss"]
	}`)

	sources, err := LoadSources(path)
	require.NoError(t, err)

	assert.Len(t, sources, 2)
	assert.Len(t, sources["The New York Times"], 2)
	assert.Equal(t, []string{"http://www.foreignpolicy.com/rss"}, sources["Foreign Policy"])
}

func TestLoadSources_RejectsEmptyURL(t *testing.T) {
	path := writeFile(t, "sources.yaml", "Reuters:\n  - \"\"\n")

	_, err := LoadSources(path)
	assert.ErrorContains(t, err, "empty feed url")
}
