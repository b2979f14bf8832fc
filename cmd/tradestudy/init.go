package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/3star333/tradestudyagent/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the agent home directory and configuration",
	Long: `Initialize the trade study agent by creating:
- The home directory structure
- A default configuration file

Credentials are referenced as ${VAR} environment placeholders in the
generated config, never written to disk.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	homeDir := globalFlags.homeDir()
	configPath := filepath.Join(homeDir, "config.yaml")

	cmd.Printf("Initializing trade study agent in %s...\n", homeDir)

	if _, err := os.Stat(configPath); err == nil && !initForce {
		cmd.PrintErrf("Config already exists at %s (use --force to overwrite)\n", configPath)
		return nil
	}

	for _, dir := range []string{homeDir, filepath.Join(homeDir, "data")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	cfg := config.DefaultConfig()
	cfg.Core.HomeDir = homeDir
	cfg.Core.DataDir = filepath.Join(homeDir, "data")
	cfg.Database.Path = filepath.Join(homeDir, "tradestudy.db")
	cfg.LLM.APIKey = "${OPENAI_API_KEY}"
	cfg.Research.TavilyAPIKey = "${TAVILY_API_KEY}"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return err
	}

	cmd.Println("\nInitialized successfully!")
	cmd.Printf("  Home directory: %s\n", homeDir)
	cmd.Printf("  Config created: %s\n", configPath)
	cmd.Println("\nSet OPENAI_API_KEY and TAVILY_API_KEY to enable model-backed")
	cmd.Println("generation and live web research.")
	return nil
}
