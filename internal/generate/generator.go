// Package generate produces complete scored trade studies from a topic:
// research, criteria, alternatives, weighted scoring, persistence, and
// optional artifact export. Model output is validated and every numeric
// result is recomputed locally; deterministic fallbacks keep generation
// working when the model output is unusable.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/3star333/tradestudyagent/internal/analysis"
	"github.com/3star333/tradestudyagent/internal/export"
	"github.com/3star333/tradestudyagent/internal/llm"
	"github.com/3star333/tradestudyagent/internal/research"
	"github.com/3star333/tradestudyagent/internal/schema"
	"github.com/3star333/tradestudyagent/internal/study"
	"github.com/3star333/tradestudyagent/internal/types"
)

const minTopicLength = 5

// Input describes one generation request. Depth defaults to standard and
// artifacts are generated unless explicitly disabled.
type Input struct {
	Topic             string         `json:"topic"`
	FolderID          string         `json:"folderId,omitempty"`
	Depth             research.Depth `json:"depth,omitempty"`
	GenerateArtifacts *bool          `json:"generateArtifacts,omitempty"`
}

func (in Input) artifacts() bool {
	return in.GenerateArtifacts == nil || *in.GenerateArtifacts
}

func (in Input) validate() error {
	if len(strings.TrimSpace(in.Topic)) < minTopicLength {
		return types.NewError(types.TOOL_INVALID_INPUT, "topic too short")
	}
	return nil
}

// Result is the outcome of one generation run.
type Result struct {
	StudyID         types.ID                  `json:"studyId"`
	Criteria        []study.Criterion         `json:"criteria"`
	Alternatives    []study.Alternative       `json:"alternatives"`
	Scored          []study.ScoredAlternative `json:"scored"`
	Winner          *study.ScoredAlternative  `json:"winner,omitempty"`
	DocFileID       string                    `json:"docFileId,omitempty"`
	SheetFileID     string                    `json:"sheetFileId,omitempty"`
	SlideFileID     string                    `json:"slideFileId,omitempty"`
	ResearchSummary string                    `json:"researchSummary,omitempty"`
	Sources         []research.Source         `json:"sources,omitempty"`
	ExportStatuses  []export.PublishResult    `json:"exportStatuses,omitempty"`
}

// Generator runs the generation pipeline.
type Generator struct {
	client      *llm.StructuredClient
	store       study.Store
	pipeline    *research.Pipeline
	analyzer    *analysis.Analyzer
	coordinator *export.Coordinator
	logger      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the generator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a generation pipeline. A nil completer runs the
// whole pipeline on fallbacks, which keeps generation usable without a
// model credential.
func NewGenerator(completer llm.Completer, store study.Store, pipeline *research.Pipeline,
	analyzer *analysis.Analyzer, coordinator *export.Coordinator, opts ...Option) *Generator {
	g := &Generator{
		store:       store,
		pipeline:    pipeline,
		analyzer:    analyzer,
		coordinator: coordinator,
		logger:      slog.Default(),
	}
	if completer != nil {
		g.client = llm.NewStructuredClient(completer)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run generates, persists, and optionally exports a trade study for the
// topic. Steps are strictly ordered; only research and persistence
// failures abort the run — model irregularities degrade to fallbacks and
// export failures are reported per target in the result.
func (g *Generator) Run(ctx context.Context, ownerID string, input Input) (*Result, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	depth := input.Depth
	if !depth.IsValid() {
		depth = research.DepthStandard
	}

	g.logger.Info("generating trade study",
		slog.String("topic", input.Topic),
		slog.String("depth", depth.String()))

	finding, err := g.pipeline.Research(ctx, input.Topic, depth)
	if err != nil {
		return nil, err
	}
	researchContext := researchContextFor(finding)

	criteria := g.GenerateCriteria(ctx, input.Topic)
	alternatives := g.GenerateAlternatives(ctx, input.Topic)
	scored := g.ScoreAlternatives(ctx, input.Topic, criteria, alternatives, researchContext)
	winner := selectWinner(scored)

	winnerName := ""
	if winner != nil {
		winnerName = winner.Name
	}

	created, err := g.store.Create(ctx, study.CreateParams{
		OwnerID: ownerID,
		Title:   input.Topic,
		Summary: finding.Summary,
		Data: map[string]any{
			"criteria":        criteria,
			"alternatives":    alternatives,
			"scored":          scored,
			"winner":          winnerName,
			"researchSources": finding.Sources,
			"generationDepth": depth.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	g.enrich(ctx, created)

	result := &Result{
		StudyID:         created.ID,
		Criteria:        criteria,
		Alternatives:    alternatives,
		Scored:          scored,
		Winner:          winner,
		ResearchSummary: finding.Summary,
		Sources:         finding.Sources,
	}

	if input.artifacts() {
		statuses := g.coordinator.Export(ctx, export.Request{
			Study:    created,
			Targets:  export.Targets{Doc: true, Sheet: true, Slide: true},
			FolderID: input.FolderID,
			Criteria: criteria,
			Scored:   scored,
			Winner:   winnerName,
		})
		result.ExportStatuses = statuses
		for _, status := range statuses {
			if status.Status != types.StepStatusOK {
				continue
			}
			switch status.Target {
			case export.TargetDoc:
				result.DocFileID = status.FileID
			case export.TargetSheet:
				result.SheetFileID = status.FileID
			case export.TargetSlide:
				result.SlideFileID = status.FileID
			}
		}
	}

	g.logger.Info("trade study generated",
		slog.String("study_id", created.ID.String()),
		slog.String("winner", winnerName),
		slog.Int("criteria", len(criteria)),
		slog.Int("alternatives", len(alternatives)))

	return result, nil
}

// criteriaShape bounds criteria to 4-10 entries with weights in [0, 1].
var criteriaShape = schema.Object(map[string]*schema.JSONSchema{
	"criteria": schema.Array(schema.Object(map[string]*schema.JSONSchema{
		"name":        schema.String(),
		"description": schema.String(),
		"weight":      schema.Number(0, 1),
	}, "name", "description", "weight")).Bounded(4, 10),
}, "criteria")

// GenerateCriteria asks the model for weighted evaluation criteria and
// renormalizes the weights to sum to 1. Any validation failure yields
// the fixed four-criterion fallback.
func (g *Generator) GenerateCriteria(ctx context.Context, topic string) []study.Criterion {
	criteria := fallbackCriteria()

	if g.client != nil {
		prompt := fmt.Sprintf(`You are designing a trade study. Topic: %s.
List 4-10 evaluation criteria with short descriptions and weights summing to ~1.
Weights should reflect importance. Return JSON { "criteria": [ { "name": ..., "description": ..., "weight": 0.x } ] }`, topic)

		if generated, ok := completeSlice[study.Criterion](ctx, g.client, prompt, criteriaShape, "criteria"); ok {
			criteria = generated
		} else {
			g.logger.Warn("criteria generation fell back", slog.String("topic", topic))
		}
	}

	return normalizeWeights(criteria)
}

// alternativesShape bounds alternatives to 3-8 entries.
var alternativesShape = schema.Object(map[string]*schema.JSONSchema{
	"alternatives": schema.Array(schema.Object(map[string]*schema.JSONSchema{
		"name":      schema.String(),
		"rationale": &schema.JSONSchema{Type: "string", MinLength: intPtr(5)},
	}, "name", "rationale")).Bounded(3, 8),
}, "alternatives")

// GenerateAlternatives asks the model for solution alternatives, falling
// back to the three generic options on validation failure.
func (g *Generator) GenerateAlternatives(ctx context.Context, topic string) []study.Alternative {
	if g.client == nil {
		return fallbackAlternatives()
	}

	prompt := fmt.Sprintf(`Provide 3-8 distinct solution alternatives for: %s.
Each with a concise rationale.
Return JSON { "alternatives": [ { "name": "...", "rationale": "..." } ] }`, topic)

	if generated, ok := completeSlice[study.Alternative](ctx, g.client, prompt, alternativesShape, "alternatives"); ok {
		return generated
	}
	g.logger.Warn("alternative generation fell back", slog.String("topic", topic))
	return fallbackAlternatives()
}

// scoredShape validates scored alternatives with per-criterion scores in
// [0, 10].
var scoredShape = schema.Object(map[string]*schema.JSONSchema{
	"scored": schema.Array(schema.Object(map[string]*schema.JSONSchema{
		"name":      schema.String(),
		"rationale": schema.String(),
		"scores": &schema.JSONSchema{
			Type:                 "object",
			AdditionalProperties: schema.Number(0, 10),
		},
	}, "name", "scores")),
}, "scored")

// ScoreAlternatives asks the model to score every alternative against
// every criterion, falling back to a uniform score of 5. The weighted
// total is always recomputed locally from the scores and weights; any
// total the model supplies is discarded.
func (g *Generator) ScoreAlternatives(ctx context.Context, topic string, criteria []study.Criterion,
	alternatives []study.Alternative, researchContext string) []study.ScoredAlternative {
	scored := fallbackScored(criteria, alternatives)

	if g.client != nil {
		var criteriaLines, alternativeLines strings.Builder
		for _, criterion := range criteria {
			fmt.Fprintf(&criteriaLines, "- %s (%g): %s\n", criterion.Name, criterion.Weight, criterion.Description)
		}
		for _, alternative := range alternatives {
			fmt.Fprintf(&alternativeLines, "- %s: %s\n", alternative.Name, alternative.Rationale)
		}

		prompt := fmt.Sprintf(`Score the following alternatives for a trade study on: %s.
Criteria (with weight):
%s
Alternatives:
%s`, topic, criteriaLines.String(), alternativeLines.String())
		if researchContext != "" {
			prompt += "\nResearch Context:\n" + researchContext + "\n"
		}
		prompt += `
Return JSON { "scored": [ { "name": "...", "rationale": "...", "scores": { "Criterion": number } } ] }.
Scores are 0-10 integers or decimals.`

		if generated, ok := completeSlice[study.ScoredAlternative](ctx, g.client, prompt, scoredShape, "scored"); ok {
			scored = generated
		} else {
			g.logger.Warn("scoring fell back to uniform scores", slog.String("topic", topic))
		}
	}

	for i := range scored {
		scored[i].WeightedTotal = weightedTotal(scored[i].Scores, criteria)
	}
	return scored
}

// enrich runs a best-effort gap analysis over the persisted study and
// shallow-merges any updated data back in. Failures are logged and
// swallowed; they never fail generation.
func (g *Generator) enrich(ctx context.Context, created *study.TradeStudy) {
	if g.analyzer == nil {
		return
	}

	result, err := g.analyzer.Analyze(ctx, analysis.Params{
		Title:   created.Title,
		Summary: created.Summary,
		Data:    created.Data,
		Goal:    analysis.GoalIdentifyGaps,
	})
	if err != nil {
		g.logger.Warn("gap analysis enrichment failed", slog.String("error", err.Error()))
		return
	}
	if result.UpdatedData == nil {
		return
	}

	merged := make(map[string]any, len(created.Data)+len(result.UpdatedData))
	for key, value := range created.Data {
		merged[key] = value
	}
	for key, value := range result.UpdatedData {
		merged[key] = value
	}

	if _, err := g.store.Update(ctx, created.ID, study.UpdateParams{Data: merged}); err != nil {
		g.logger.Warn("enrichment persist failed", slog.String("error", err.Error()))
		return
	}
	created.Data = merged
}

// completeSlice runs one structured completion and decodes the named
// array field. The bool result reports whether the model path succeeded.
func completeSlice[T any](ctx context.Context, client *llm.StructuredClient, prompt string,
	shape *schema.JSONSchema, field string) ([]T, bool) {
	obj, err := client.CompleteObject(ctx, llm.CompletionRequest{
		UserPrompt:  prompt + "\nReturn ONLY valid JSON.",
		Temperature: 0.7,
	}, shape)
	if err != nil {
		return nil, false
	}

	out := decodeSliceField[T](obj[field])
	if out == nil {
		return nil, false
	}
	return out, true
}

// normalizeWeights divides each weight by the raw sum so weights sum to
// 1, rounded to four decimals.
func normalizeWeights(criteria []study.Criterion) []study.Criterion {
	total := 0.0
	for _, criterion := range criteria {
		total += criterion.Weight
	}
	if total == 0 {
		total = 1
	}

	normalized := make([]study.Criterion, len(criteria))
	for i, criterion := range criteria {
		criterion.Weight = round(criterion.Weight/total, 4)
		normalized[i] = criterion
	}
	return normalized
}

// weightedTotal recomputes the weighted sum of scores, rounded to three
// decimals. Missing scores count as zero.
func weightedTotal(scores map[string]float64, criteria []study.Criterion) float64 {
	total := 0.0
	for _, criterion := range criteria {
		total += scores[criterion.Name] * criterion.Weight
	}
	return round(total, 3)
}

// selectWinner picks the scored alternative with the maximum weighted
// total. Ties resolve to the first such alternative in input order.
func selectWinner(scored []study.ScoredAlternative) *study.ScoredAlternative {
	if len(scored) == 0 {
		return nil
	}
	winner := scored[0]
	for _, candidate := range scored[1:] {
		if candidate.WeightedTotal > winner.WeightedTotal {
			winner = candidate
		}
	}
	return &winner
}

func fallbackCriteria() []study.Criterion {
	return []study.Criterion{
		{Name: "Cost", Description: "Overall economic impact and pricing model", Weight: 0.25},
		{Name: "Performance", Description: "Latency, throughput, and efficiency", Weight: 0.25},
		{Name: "Scalability", Description: "Ability to grow with demand", Weight: 0.25},
		{Name: "Maintainability", Description: "Ease of operations & upgrades", Weight: 0.25},
	}
}

func fallbackAlternatives() []study.Alternative {
	return []study.Alternative{
		{Name: "Option A", Rationale: "Baseline well-known approach."},
		{Name: "Option B", Rationale: "Innovative but less proven approach."},
		{Name: "Option C", Rationale: "Hybrid or combined strategy."},
	}
}

// fallbackScored assigns a uniform score of 5 for every pair.
func fallbackScored(criteria []study.Criterion, alternatives []study.Alternative) []study.ScoredAlternative {
	scored := make([]study.ScoredAlternative, len(alternatives))
	for i, alternative := range alternatives {
		scores := make(map[string]float64, len(criteria))
		for _, criterion := range criteria {
			scores[criterion.Name] = 5
		}
		scored[i] = study.ScoredAlternative{Alternative: alternative, Scores: scores}
	}
	return scored
}

func researchContextFor(finding *research.Finding) string {
	var sb strings.Builder
	sb.WriteString(finding.Summary)
	if len(finding.Sources) > 0 {
		sb.WriteString("\nSources:\n")
		for _, source := range finding.Sources {
			fmt.Fprintf(&sb, "%s - %s\n", source.Title, source.URL)
		}
	}
	return sb.String()
}

func round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

func intPtr(v int) *int { return &v }

// decodeSliceField converts a loosely typed array value into a concrete
// slice via a JSON round trip.
func decodeSliceField[T any](value any) []T {
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
