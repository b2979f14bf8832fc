package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3star333/tradestudyagent/internal/types"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 30*time.Second, cfg.Research.FetchTimeout)
	assert.False(t, cfg.Database.InMemory)
	assert.Contains(t, cfg.Database.Path, "tradestudy.db")

	require.NoError(t, NewValidator().Validate(cfg))
}

func TestLoaderLoad(t *testing.T) {
	path := writeConfigFile(t, `
core:
  debug: true
  timeout: 2m
database:
  in_memory: true
llm:
  provider: anthropic
  model: claude-sonnet-4-5
  temperature: 0.2
logging:
  level: debug
  format: text
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Core.Debug)
	assert.Equal(t, 2*time.Minute, cfg.Core.Timeout)
	assert.True(t, cfg.Database.InMemory)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-sonnet-4-5", cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	// Unspecified sections keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Research.FetchTimeout)
}

func TestLoaderLoadMissingFile(t *testing.T) {
	_, err := NewLoader(NewValidator()).Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_LOAD_FAILED, types.CodeOf(err))
}

func TestLoaderLoadMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "llm: [this is: not valid\n")

	_, err := NewLoader(NewValidator()).Load(path)
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_LOAD_FAILED, types.CodeOf(err))
}

func TestLoaderLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := NewLoader(NewValidator()).LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
}

func TestLoaderEnvInterpolation(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test-123")
	t.Setenv("TEST_TAVILY_KEY", "tvly-test-456")

	path := writeConfigFile(t, `
database:
  in_memory: true
llm:
  api_key: ${TEST_OPENAI_KEY}
research:
  tavily_api_key: ${TEST_TAVILY_KEY}
publish:
  service_account_key: ${TEST_UNSET_VAR}
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123", cfg.LLM.APIKey)
	assert.Equal(t, "tvly-test-456", cfg.Research.TavilyAPIKey)
	// Unset variables leave the reference untouched.
	assert.Equal(t, "${TEST_UNSET_VAR}", cfg.Publish.ServiceAccountKey)
}

func TestValidatorRejectsBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "loud"

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "must be one of")
}

func TestValidatorRejectsUnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Provider = "bard"

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
}

func TestValidatorRequiresDatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Path = ""
	cfg.Database.InMemory = false

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.path")

	cfg.Database.InMemory = true
	require.NoError(t, NewValidator().Validate(cfg))
}

func TestValidatorNilConfig(t *testing.T) {
	err := NewValidator().Validate(nil)
	require.Error(t, err)
}

func TestCamelToSnake(t *testing.T) {
	assert.Equal(t, "home_dir", camelToSnake("HomeDir"))
	assert.Equal(t, "fetch_timeout", camelToSnake("FetchTimeout"))
	assert.Equal(t, "level", camelToSnake("Level"))
}
