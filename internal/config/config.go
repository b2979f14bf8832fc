// Package config loads and validates the agent configuration from YAML
// files, with environment variable interpolation for credentials.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/3star333/tradestudyagent/internal/llm"
)

// Config is the root configuration for the trade study agent.
type Config struct {
	Core     CoreConfig         `mapstructure:"core" yaml:"core"`
	Database DBConfig           `mapstructure:"database" yaml:"database"`
	LLM      llm.ProviderConfig `mapstructure:"llm" yaml:"llm"`
	Research ResearchConfig     `mapstructure:"research" yaml:"research"`
	Publish  PublishConfig      `mapstructure:"publish" yaml:"publish"`
	Logging  LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// CoreConfig holds paths and run-wide settings.
type CoreConfig struct {
	HomeDir string        `mapstructure:"home_dir" yaml:"home_dir"`
	DataDir string        `mapstructure:"data_dir" yaml:"data_dir"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=0"`
	Debug   bool          `mapstructure:"debug" yaml:"debug"`
}

// DBConfig holds trade study store settings. InMemory selects the
// non-persistent store and ignores Path.
type DBConfig struct {
	Path     string `mapstructure:"path" yaml:"path"`
	InMemory bool   `mapstructure:"in_memory" yaml:"in_memory"`
}

// ResearchConfig holds search and content fetch settings. Without a
// Tavily API key the research pipeline runs on placeholder search
// results.
type ResearchConfig struct {
	TavilyAPIKey string        `mapstructure:"tavily_api_key" yaml:"tavily_api_key,omitempty"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout" validate:"min=0"`
}

// PublishConfig holds publishing target settings. Without a service
// account key every publish attempt reports skipped.
type PublishConfig struct {
	FolderID          string `mapstructure:"folder_id" yaml:"folder_id,omitempty"`
	ServiceAccountKey string `mapstructure:"service_account_key" yaml:"service_account_key,omitempty"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json text"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	homeDir := getDefaultHomeDir()

	return &Config{
		Core: CoreConfig{
			HomeDir: homeDir,
			DataDir: filepath.Join(homeDir, "data"),
			Timeout: 5 * time.Minute,
			Debug:   false,
		},
		Database: DBConfig{
			Path:     filepath.Join(homeDir, "tradestudy.db"),
			InMemory: false,
		},
		LLM: llm.ProviderConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
		},
		Research: ResearchConfig{
			FetchTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// getDefaultHomeDir returns the default agent home directory, ~/.tradestudy,
// falling back to a temporary directory if user home cannot be determined.
func getDefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".tradestudy")
	}
	return filepath.Join(userHome, ".tradestudy")
}
