package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/3star333/tradestudyagent/internal/llm"
	"github.com/3star333/tradestudyagent/internal/schema"
	"github.com/3star333/tradestudyagent/internal/types"
)

// Goal selects the analysis instruction sent to the language model.
type Goal string

const (
	GoalSummarize     Goal = "summarize"
	GoalScore         Goal = "score"
	GoalDraftProposal Goal = "draft_proposal"
	GoalIdentifyGaps  Goal = "identify_gaps"
)

// String returns the string representation of Goal
func (g Goal) String() string {
	return string(g)
}

// IsValid checks if the Goal is a valid value
func (g Goal) IsValid() bool {
	switch g {
	case GoalSummarize, GoalScore, GoalDraftProposal, GoalIdentifyGaps:
		return true
	default:
		return false
	}
}

// instruction returns the goal-specific task description embedded in both
// the system and user prompts.
func (g Goal) instruction() string {
	switch g {
	case GoalSummarize:
		return "provide a clear summary of the trade study, highlighting key requirements, options being considered, and any preliminary findings"
	case GoalScore:
		return "evaluate and score each option against the defined criteria, providing quantitative ratings and justifications"
	case GoalDraftProposal:
		return "draft a decision proposal recommending the best option(s) with supporting rationale"
	case GoalIdentifyGaps:
		return "identify gaps in the analysis, missing requirements, unclear criteria, or options that should be considered"
	default:
		return "analyze the trade study and provide actionable insights"
	}
}

// Analysis is the validated structured result of one analysis call.
// UpdatedData, when present, is a replacement payload for the study's
// data field; persisting it is the caller's decision.
type Analysis struct {
	Summary         string         `json:"summary"`
	Recommendations []string       `json:"recommendations"`
	NextSteps       []string       `json:"nextSteps"`
	UpdatedData     map[string]any `json:"updatedData,omitempty"`
}

// Params carries the study snapshot and goal for one analysis call.
type Params struct {
	Title        string
	Summary      string
	Data         map[string]any
	Goal         Goal
	ExtraContext string
}

// Analyzer turns trade study snapshots into structured analyses via the
// language model. A nil completer degrades to a stubbed response so the
// surrounding pipelines keep working without a credential.
type Analyzer struct {
	client *llm.StructuredClient
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the analyzer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// NewAnalyzer creates an Analyzer over the given completer. Pass nil to
// run in stub mode.
func NewAnalyzer(completer llm.Completer, opts ...Option) *Analyzer {
	a := &Analyzer{logger: slog.Default()}
	if completer != nil {
		a.client = llm.NewStructuredClient(completer)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// analysisShape is the expected structure of a model analysis response.
var analysisShape = schema.Object(map[string]*schema.JSONSchema{
	"summary":         schema.String(),
	"recommendations": schema.Array(schema.String()),
	"nextSteps":       schema.Array(schema.String()),
	"updatedData":     {Type: "object"},
}, "summary", "recommendations", "nextSteps")

// Analyze runs one goal-directed analysis over a study snapshot. Model
// output is validated (with one corrective retry); after that the call
// returns a MODEL_OUTPUT_INVALID error and callers decide whether the
// step is best-effort.
func (a *Analyzer) Analyze(ctx context.Context, p Params) (*Analysis, error) {
	if a.client == nil {
		a.logger.Warn("language model not configured, returning stubbed analysis",
			slog.String("goal", p.Goal.String()))
		return stubAnalysis(p), nil
	}

	dataJSON, err := json.MarshalIndent(p.Data, "", "  ")
	if err != nil {
		dataJSON = []byte("{}")
	}

	systemPrompt := fmt.Sprintf(`You are an expert technical consultant helping evaluate and document trade studies.
A trade study compares multiple options (technologies, vendors, architectures) against defined requirements and criteria.

Your job is to analyze the provided trade study data and %s.

Return your analysis as a JSON object with keys "summary" (string), "recommendations" (array of strings), "nextSteps" (array of strings), and optionally "updatedData" (object).`, p.Goal.instruction())

	userPrompt := fmt.Sprintf("Trade Study: %s\n", p.Title)
	if p.Summary != "" {
		userPrompt += fmt.Sprintf("Summary: %s\n", p.Summary)
	}
	userPrompt += fmt.Sprintf("Current Data:\n%s\n", dataJSON)
	if p.ExtraContext != "" {
		userPrompt += fmt.Sprintf("\nAdditional Context:\n%s\n", p.ExtraContext)
	}
	userPrompt += fmt.Sprintf("\nPlease %s.", p.Goal.instruction())

	obj, err := a.client.CompleteObject(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.7,
	}, analysisShape)
	if err != nil {
		return nil, err
	}

	return decodeAnalysis(obj)
}

// decodeAnalysis converts a validated object into an Analysis.
func decodeAnalysis(obj map[string]any) (*Analysis, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, types.WrapError(types.MODEL_OUTPUT_INVALID, "failed to re-encode analysis", err)
	}

	var analysis Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, types.WrapError(types.MODEL_OUTPUT_INVALID, "failed to decode analysis", err)
	}

	return &analysis, nil
}

// stubAnalysis is the credential-less fallback response.
func stubAnalysis(p Params) *Analysis {
	return &Analysis{
		Summary:         "Language model not configured. This is a stubbed response.",
		Recommendations: []string{"Configure an LLM provider and API key", "Re-run the analysis"},
		NextSteps:       []string{"Review environment configuration"},
		UpdatedData:     p.Data,
	}
}
