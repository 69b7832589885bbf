package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Batch.Concurrency)
	assert.Equal(t, 250, cfg.Batch.PacingMs)
	assert.Equal(t, "https://api.hunter.io/v2", cfg.Hunter.BaseURL)
	assert.Equal(t, "https://api.apollo.io/v1", cfg.Apollo.BaseURL)
	assert.Equal(t, "https://api.apify.com/v2", cfg.Apify.BaseURL)
	assert.Equal(t, 300, cfg.Apify.MaxWaitSecs)
	assert.Equal(t, 2048, cfg.Apify.MemoryMB)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)

	content := `
hunter:
  key: hunter-key
apollo:
  key: apollo-key
batch:
  concurrency: 5
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "hunter-key", cfg.Hunter.Key)
	assert.Equal(t, "apollo-key", cfg.Apollo.Key)
	assert.Equal(t, 5, cfg.Batch.Concurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Untouched sections keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("OUTREACH_LOG_LEVEL", "warn")
	t.Setenv("OUTREACH_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_BadConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("hunter: [broken"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Hunter: HunterConfig{Key: "k"},
			Apify:  ApifyConfig{Token: "t", ActorID: "a"},
			Batch:  BatchConfig{Concurrency: 3},
			Server: ServerConfig{Port: 8080},
		}
	}

	t.Run("resolve ok", func(t *testing.T) {
		assert.NoError(t, base().Validate("resolve"))
	})

	t.Run("resolve needs a provider key", func(t *testing.T) {
		cfg := base()
		cfg.Hunter.Key = ""
		cfg.Apollo.Key = ""
		err := cfg.Validate("resolve")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hunter.key")
	})

	t.Run("apollo alone satisfies resolve", func(t *testing.T) {
		cfg := base()
		cfg.Hunter.Key = ""
		cfg.Apollo.Key = "k"
		assert.NoError(t, cfg.Validate("resolve"))
	})

	t.Run("contacts needs token and actor", func(t *testing.T) {
		cfg := base()
		cfg.Apify.Token = ""
		err := cfg.Validate("contacts")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "apify.token")
	})

	t.Run("serve needs a port", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate("serve"))
	})

	t.Run("concurrency bounds", func(t *testing.T) {
		cfg := base()
		cfg.Batch.Concurrency = 21
		assert.Error(t, cfg.Validate("resolve"))
		cfg.Batch.Concurrency = 0
		assert.Error(t, cfg.Validate("resolve"))
	})

	t.Run("unknown mode", func(t *testing.T) {
		assert.Error(t, base().Validate("export"))
	})
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope"}))
}
