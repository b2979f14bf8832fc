package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/3star333/tradestudyagent/internal/study"
	"github.com/3star333/tradestudyagent/internal/types"
)

// Targets selects which publishing destinations to attempt.
type Targets struct {
	Doc   bool `json:"doc,omitempty"`
	Sheet bool `json:"sheet,omitempty"`
	Slide bool `json:"slides,omitempty"`
	Drive bool `json:"drive,omitempty"`
}

// Any reports whether at least one target is requested.
func (t Targets) Any() bool {
	return t.Doc || t.Sheet || t.Slide || t.Drive
}

// Request describes one fan-out of a trade study to publishing targets.
// Criteria and Scored feed the document and spreadsheet bodies; when
// absent they are decoded from the study's data payload.
type Request struct {
	Study    *study.TradeStudy
	Targets  Targets
	FolderID string
	Criteria []study.Criterion
	Scored   []study.ScoredAlternative
	Winner   string
}

// Coordinator fans one trade study out to the requested publishing
// targets, one independent attempt per target in the fixed order
// doc, sheet, slide, drive. A successful attempt records an Attachment;
// skipped and failed attempts never do. No attempt can abort another.
type Coordinator struct {
	publisher Publisher
	store     study.Store
	logger    *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// NewCoordinator creates an export coordinator. A nil publisher degrades
// to the unconfigured publisher, which skips every target.
func NewCoordinator(publisher Publisher, store study.Store, opts ...CoordinatorOption) *Coordinator {
	if publisher == nil {
		publisher = NewUnconfiguredPublisher()
	}
	c := &Coordinator{
		publisher: publisher,
		store:     store,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Export attempts each requested target and returns one result per
// requested target, in request order.
func (c *Coordinator) Export(ctx context.Context, req Request) []PublishResult {
	req = c.hydrate(req)

	var results []PublishResult
	if req.Targets.Doc {
		results = append(results, c.attempt(ctx, req, TargetDoc))
	}
	if req.Targets.Sheet {
		results = append(results, c.attempt(ctx, req, TargetSheet))
	}
	if req.Targets.Slide {
		results = append(results, c.attempt(ctx, req, TargetSlide))
	}
	if req.Targets.Drive {
		results = append(results, c.attempt(ctx, req, TargetDrive))
	}
	return results
}

// hydrate fills Criteria/Scored/Winner from the study data payload when
// the caller did not supply them directly.
func (c *Coordinator) hydrate(req Request) Request {
	if req.Study == nil {
		return req
	}
	if req.Criteria == nil {
		req.Criteria = decodeSlice[study.Criterion](req.Study.Data["criteria"])
	}
	if req.Scored == nil {
		req.Scored = decodeSlice[study.ScoredAlternative](req.Study.Data["scored"])
	}
	if req.Winner == "" {
		if winner, ok := req.Study.Data["winner"].(string); ok {
			req.Winner = winner
		}
	}
	return req
}

// attempt publishes to a single target, isolating panics and recording
// an attachment for ok outcomes.
func (c *Coordinator) attempt(ctx context.Context, req Request, target Target) (result PublishResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("publish attempt panicked",
				slog.String("target", target.String()),
				slog.Any("panic", r))
			result = PublishResult{
				Target:  target,
				Status:  types.StepStatusError,
				Message: fmt.Sprintf("publish panicked: %v", r),
			}
		}
	}()

	title := req.Study.Title

	switch target {
	case TargetDoc:
		result = c.publisher.CreateDocument(ctx, title, documentSections(req), req.FolderID)
	case TargetSheet:
		result = c.publisher.CreateSpreadsheet(ctx, title+" Scoring", scoringMatrix(req), req.FolderID)
	case TargetSlide:
		result = c.publisher.CreateSlideDeck(ctx, title, req.FolderID)
	case TargetDrive:
		result = c.publisher.UploadFile(ctx, title+".json", studyJSON(req.Study), req.FolderID)
	default:
		result = PublishResult{Status: types.StepStatusError, Message: "unknown target"}
	}
	result.Target = target

	c.logger.Info("publish attempt finished",
		slog.String("target", target.String()),
		slog.String("status", result.Status.String()))

	if result.Status == types.StepStatusOK && result.FileID != "" {
		if err := c.recordAttachment(ctx, req, target, result.FileID); err != nil {
			c.logger.Warn("attachment record failed",
				slog.String("target", target.String()),
				slog.String("error", err.Error()))
		}
	}
	return result
}

func (c *Coordinator) recordAttachment(ctx context.Context, req Request, target Target, fileID string) error {
	if c.store == nil {
		return nil
	}

	var (
		attachType types.AttachmentType
		suffix     string
	)
	switch target {
	case TargetDoc:
		attachType, suffix = types.AttachmentTypeDoc, "Summary"
	case TargetSheet:
		attachType, suffix = types.AttachmentTypeSheet, "Scoring"
	case TargetSlide:
		attachType, suffix = types.AttachmentTypeSlide, "Slides"
	case TargetDrive:
		attachType, suffix = types.AttachmentTypeDrive, "Export"
	}

	_, err := c.store.AttachFile(ctx, study.AttachParams{
		TradeStudyID: req.Study.ID,
		FileID:       fileID,
		Type:         attachType,
		Title:        fmt.Sprintf("%s %s", req.Study.Title, suffix),
	})
	return err
}

// documentSections renders the study into heading/body pairs for the
// document target.
func documentSections(req Request) []Section {
	sections := []Section{{Heading: "Overview", Body: req.Study.Summary}}

	if len(req.Criteria) > 0 {
		var sb strings.Builder
		for _, criterion := range req.Criteria {
			fmt.Fprintf(&sb, "- %s (weight %.2f): %s\n", criterion.Name, criterion.Weight, criterion.Description)
		}
		sections = append(sections, Section{Heading: "Criteria", Body: sb.String()})
	}

	if len(req.Scored) > 0 {
		var sb strings.Builder
		for _, alt := range req.Scored {
			fmt.Fprintf(&sb, "- %s (total %.3f): %s\n", alt.Name, alt.WeightedTotal, alt.Rationale)
		}
		sections = append(sections, Section{Heading: "Alternatives", Body: sb.String()})
	}

	if req.Winner != "" {
		sections = append(sections, Section{Heading: "Recommendation", Body: "Recommended option: " + req.Winner})
	}
	return sections
}

// scoringMatrix renders the weighted scoring table for the spreadsheet
// target: a header row of criterion names followed by one row per
// alternative.
func scoringMatrix(req Request) [][]string {
	header := []string{"Alternative"}
	for _, criterion := range req.Criteria {
		header = append(header, fmt.Sprintf("%s (%.2f)", criterion.Name, criterion.Weight))
	}
	header = append(header, "Weighted Total")

	matrix := [][]string{header}
	for _, alt := range req.Scored {
		row := []string{alt.Name}
		for _, criterion := range req.Criteria {
			row = append(row, strconv.FormatFloat(alt.Scores[criterion.Name], 'f', 1, 64))
		}
		row = append(row, strconv.FormatFloat(alt.WeightedTotal, 'f', 3, 64))
		matrix = append(matrix, row)
	}
	return matrix
}

func studyJSON(s *study.TradeStudy) []byte {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return []byte("{}")
	}
	return raw
}

// decodeSlice converts a loosely typed data payload entry (as decoded
// from JSON) into a concrete slice.
func decodeSlice[T any](value any) []T {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
