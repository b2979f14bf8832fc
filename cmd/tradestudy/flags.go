package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// OutputFormat represents the output format for CLI commands
type OutputFormat string

const (
	// FormatText is human-readable text output
	FormatText OutputFormat = "text"
	// FormatJSON is structured JSON output
	FormatJSON OutputFormat = "json"
)

// GlobalFlags holds global flags available to all commands
type GlobalFlags struct {
	Verbose      bool
	Quiet        bool
	OutputFormat string
	ConfigFile   string
	HomeDir      string
}

var globalFlags = &GlobalFlags{}

// RegisterGlobalFlags registers persistent flags on the root command
func RegisterGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", "text", "Output format (text|json)")
	cmd.PersistentFlags().StringVar(&globalFlags.ConfigFile, "config", "", "Path to config file (default: $TRADESTUDY_HOME/config.yaml)")
	cmd.PersistentFlags().StringVar(&globalFlags.HomeDir, "home", "", "Agent home directory (default: ~/.tradestudy)")
}

// GetOutputFormat returns the parsed OutputFormat enum
func (f *GlobalFlags) GetOutputFormat() OutputFormat {
	if f.OutputFormat == string(FormatJSON) {
		return FormatJSON
	}
	return FormatText
}

// IsVerbose returns true if verbose mode is enabled
func (f *GlobalFlags) IsVerbose() bool {
	return f.Verbose && !f.Quiet
}

// configPath resolves the config file path from flags and environment.
func (f *GlobalFlags) configPath() string {
	if f.ConfigFile != "" {
		return f.ConfigFile
	}
	return filepath.Join(f.homeDir(), "config.yaml")
}

// homeDir resolves the agent home directory from flags and environment.
func (f *GlobalFlags) homeDir() string {
	if f.HomeDir != "" {
		return f.HomeDir
	}
	if env := os.Getenv("TRADESTUDY_HOME"); env != "" {
		return env
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".tradestudy")
	}
	return filepath.Join(userHome, ".tradestudy")
}
