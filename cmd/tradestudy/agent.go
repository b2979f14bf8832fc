package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/3star333/tradestudyagent/internal/agent"
	"github.com/3star333/tradestudyagent/internal/export"
	"github.com/3star333/tradestudyagent/internal/research"
	"github.com/3star333/tradestudyagent/internal/types"
)

var (
	agentStudyID  string
	agentGoal     string
	agentContext  string
	agentTopic    string
	agentDepth    string
	agentTargets  []string
	agentFolderID string
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run an agent goal against an existing trade study",
	Long: `Run one orchestrator goal against a stored trade study.

Goals:
  analyze               Identify gaps in the analysis
  score                 Review scoring consistency
  summarize             Produce an executive summary
  publish               Publish to the selected targets
  full_workflow         Draft proposal, mark in review, publish
  research_topic        Research a topic without modifying the study
  enrich_with_research  Fold research findings into the study
  validate_assumptions  Research the study's recorded assumptions`,
	RunE: runAgent,
}

func init() {
	agentCmd.Flags().StringVar(&agentStudyID, "study", "", "Trade study id (required)")
	agentCmd.Flags().StringVar(&agentGoal, "goal", "", "Goal to run (required)")
	agentCmd.Flags().StringVar(&agentContext, "context", "", "Extra context passed to analysis goals")
	agentCmd.Flags().StringVar(&agentTopic, "topic", "", "Research topic (default: study title)")
	agentCmd.Flags().StringVar(&agentDepth, "depth", "", "Research depth (quick|standard|deep)")
	agentCmd.Flags().StringSliceVar(&agentTargets, "targets", nil, "Publish targets (doc,sheet,slides,drive)")
	agentCmd.Flags().StringVar(&agentFolderID, "folder", "", "Destination folder id for published artifacts")
	_ = agentCmd.MarkFlagRequired("study")
	_ = agentCmd.MarkFlagRequired("goal")
}

func runAgent(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	studyID, err := types.ParseID(agentStudyID)
	if err != nil {
		return fmt.Errorf("invalid study id %q", agentStudyID)
	}

	targets, err := parseTargets(agentTargets)
	if err != nil {
		return err
	}

	req := agent.Request{
		TradeStudyID:   studyID,
		Goal:           agent.Goal(agentGoal),
		ExtraContext:   agentContext,
		PublishTargets: targets,
		FolderID:       agentFolderID,
	}
	if agentTopic != "" || agentDepth != "" {
		req.ResearchParams = &agent.ResearchParams{
			Topic: agentTopic,
			Depth: research.Depth(agentDepth),
		}
	}

	result := app.orchestrator.Run(cmd.Context(), req)

	if globalFlags.GetOutputFormat() == FormatJSON {
		return printJSON(cmd, result)
	}

	for _, step := range result.Steps {
		cmd.Printf("[%s] %s: %s\n", step.Status, step.Tool, step.Message)
	}
	if result.Analysis != nil {
		cmd.Printf("\nSummary: %s\n", result.Analysis.Summary)
		for _, rec := range result.Analysis.Recommendations {
			cmd.Printf("  - %s\n", rec)
		}
	}
	if result.ResearchFindings != nil {
		cmd.Printf("\nResearch: %s\n", result.ResearchFindings.Summary)
		for _, src := range result.ResearchFindings.Sources {
			cmd.Printf("  - %s (%s)\n", src.Title, src.URL)
		}
	}
	for _, pub := range result.PublishResults {
		cmd.Printf("publish %s: %s %s\n", pub.Target, pub.Status, pub.Message)
	}

	if !result.Success {
		return fmt.Errorf("agent run failed: %s", result.Error)
	}
	return nil
}

// parseTargets converts the --targets flag values into publish targets.
func parseTargets(values []string) (export.Targets, error) {
	var targets export.Targets
	for _, v := range values {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "doc":
			targets.Doc = true
		case "sheet":
			targets.Sheet = true
		case "slides", "slide":
			targets.Slide = true
		case "drive":
			targets.Drive = true
		default:
			return export.Targets{}, fmt.Errorf("unknown publish target %q (expected doc, sheet, slides, or drive)", v)
		}
	}
	return targets, nil
}
