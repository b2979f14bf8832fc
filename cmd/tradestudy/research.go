package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/3star333/tradestudyagent/internal/research"
)

var researchDepth string

var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Research a topic and print the synthesized finding",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResearch,
}

func init() {
	researchCmd.Flags().StringVar(&researchDepth, "depth", "standard", "Research depth (quick|standard|deep)")
}

func runResearch(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	depth := research.Depth(researchDepth)
	if !depth.IsValid() {
		return fmt.Errorf("invalid depth %q (expected quick, standard, or deep)", researchDepth)
	}

	finding, err := app.pipeline.Research(cmd.Context(), strings.Join(args, " "), depth)
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return printJSON(cmd, finding)
	}

	cmd.Printf("Topic: %s\n", finding.Topic)
	cmd.Printf("Confidence: %s\n\n", finding.Confidence)
	cmd.Println(finding.Summary)
	if len(finding.KeyFindings) > 0 {
		cmd.Println("\nKey findings:")
		for _, kf := range finding.KeyFindings {
			cmd.Printf("  - %s\n", kf)
		}
	}
	if len(finding.Sources) > 0 {
		cmd.Println("\nSources:")
		for _, src := range finding.Sources {
			cmd.Printf("  - %s (%s)\n", src.Title, src.URL)
		}
	}
	return nil
}
