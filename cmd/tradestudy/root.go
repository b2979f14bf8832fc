package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/3star333/tradestudyagent/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "tradestudy",
	Short: "Trade study agent - research, score, and publish engineering decisions",
	Long: `An agent that generates, analyzes, and publishes trade studies:
weighted-criteria comparisons of competing engineering alternatives.

Generation researches a topic, proposes criteria and alternatives,
scores them, and persists the result. Agent goals run analysis,
research enrichment, and publishing against existing studies.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(completionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.GetOutputFormat() == FormatJSON {
			return printJSON(cmd, version.Info())
		}
		cmd.Println(version.String())
		return nil
	},
}

var completionCmd = &cobra.Command{
	Use:                   "completion [bash|zsh|fish|powershell]",
	Short:                 "Generate shell completion scripts",
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			_ = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			_ = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			_ = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			_ = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}
