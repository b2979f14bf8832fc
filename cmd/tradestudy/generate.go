package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/3star333/tradestudyagent/internal/generate"
	"github.com/3star333/tradestudyagent/internal/research"
)

var (
	generateOwner       string
	generateDepth       string
	generateFolderID    string
	generateNoArtifacts bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate a complete scored trade study for a topic",
	Long: `Generate researches the topic, proposes weighted criteria and
candidate alternatives, scores every alternative against every
criterion, selects a winner, and persists the study.

Example:
  tradestudy generate "Select a vector database for AI memory" --depth quick`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateOwner, "owner", "cli", "Owner id recorded on the study")
	generateCmd.Flags().StringVar(&generateDepth, "depth", "standard", "Research depth (quick|standard|deep)")
	generateCmd.Flags().StringVar(&generateFolderID, "folder", "", "Destination folder id for exported artifacts")
	generateCmd.Flags().BoolVar(&generateNoArtifacts, "no-artifacts", false, "Skip artifact export")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	depth := research.Depth(generateDepth)
	if !depth.IsValid() {
		return fmt.Errorf("invalid depth %q (expected quick, standard, or deep)", generateDepth)
	}

	artifacts := !generateNoArtifacts
	input := generate.Input{
		Topic:             strings.Join(args, " "),
		FolderID:          generateFolderID,
		Depth:             depth,
		GenerateArtifacts: &artifacts,
	}

	result, err := app.generator.Run(cmd.Context(), generateOwner, input)
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return printJSON(cmd, result)
	}

	cmd.Printf("Generated trade study %s\n\n", result.StudyID)
	cmd.Println("Criteria:")
	for _, c := range result.Criteria {
		cmd.Printf("  %-24s %.2f  %s\n", c.Name, c.Weight, c.Description)
	}
	cmd.Println("\nAlternatives:")
	for _, s := range result.Scored {
		marker := " "
		if result.Winner != nil && s.Name == result.Winner.Name {
			marker = "*"
		}
		cmd.Printf("%s %-24s %.3f\n", marker, s.Name, s.WeightedTotal)
	}
	if result.Winner != nil {
		cmd.Printf("\nWinner: %s\n", result.Winner.Name)
	}
	if result.ResearchSummary != "" {
		cmd.Printf("\n%s\n", result.ResearchSummary)
	}
	for _, status := range result.ExportStatuses {
		cmd.Printf("export %s: %s %s\n", status.Target, status.Status, status.Message)
	}
	return nil
}

// printJSON writes a value as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}
