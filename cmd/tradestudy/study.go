package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/3star333/tradestudyagent/internal/study"
	"github.com/3star333/tradestudyagent/internal/types"
)

var (
	studyListOwner     string
	studyCreateOwner   string
	studyCreateSummary string
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Manage stored trade studies",
}

var studyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trade studies, most recently updated first",
	RunE:  runStudyList,
}

var studyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one trade study with its attachments",
	Args:  cobra.ExactArgs(1),
	RunE:  runStudyShow,
}

var studyCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create an empty draft trade study",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStudyCreate,
}

func init() {
	studyListCmd.Flags().StringVar(&studyListOwner, "owner", "", "Filter by owner id")
	studyCreateCmd.Flags().StringVar(&studyCreateOwner, "owner", "cli", "Owner id recorded on the study")
	studyCreateCmd.Flags().StringVar(&studyCreateSummary, "summary", "", "Study summary")

	studyCmd.AddCommand(studyListCmd)
	studyCmd.AddCommand(studyShowCmd)
	studyCmd.AddCommand(studyCreateCmd)
}

func runStudyList(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	studies, err := app.store.List(cmd.Context(), studyListOwner)
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return printJSON(cmd, studies)
	}

	if len(studies) == 0 {
		cmd.Println("No trade studies found")
		return nil
	}
	for _, s := range studies {
		cmd.Printf("%s  %-10s  %s\n", s.ID, s.Status, s.Title)
	}
	return nil
}

func runStudyShow(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	id, err := types.ParseID(args[0])
	if err != nil {
		return fmt.Errorf("invalid study id %q", args[0])
	}

	s, err := app.store.GetByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("trade study %s not found", id)
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return printJSON(cmd, s)
	}

	printStudy(cmd, s)
	return nil
}

func runStudyCreate(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	s, err := app.store.Create(cmd.Context(), study.CreateParams{
		OwnerID: studyCreateOwner,
		Title:   strings.Join(args, " "),
		Summary: studyCreateSummary,
	})
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return printJSON(cmd, s)
	}

	cmd.Printf("Created trade study %s\n", s.ID)
	return nil
}

func printStudy(cmd *cobra.Command, s *study.TradeStudy) {
	cmd.Printf("ID:      %s\n", s.ID)
	cmd.Printf("Title:   %s\n", s.Title)
	cmd.Printf("Owner:   %s\n", s.OwnerID)
	cmd.Printf("Status:  %s\n", s.Status)
	if s.Summary != "" {
		cmd.Printf("Summary: %s\n", s.Summary)
	}
	cmd.Printf("Updated: %s\n", s.UpdatedAt.Format("2006-01-02 15:04:05"))

	if winner, ok := s.Data["winner"].(string); ok && winner != "" {
		cmd.Printf("Winner:  %s\n", winner)
	}
	if len(s.Attachments) > 0 {
		cmd.Println("\nAttachments:")
		for _, a := range s.Attachments {
			cmd.Printf("  %-6s %s (%s)\n", a.Type, a.Title, a.FileID)
		}
	}
}
