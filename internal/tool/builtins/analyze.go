package builtins

import (
	"context"

	"github.com/3star333/tradestudyagent/internal/analysis"
	"github.com/3star333/tradestudyagent/internal/schema"
	"github.com/3star333/tradestudyagent/internal/study"
	"github.com/3star333/tradestudyagent/internal/tool"
	"github.com/3star333/tradestudyagent/internal/types"
)

// AnalyzeWithLLMTool loads a trade study and runs a goal-directed
// language model analysis over it. The only hard failure is a missing
// study; model-side irregularities surface through the analyzer's own
// fallback and retry behavior.
type AnalyzeWithLLMTool struct {
	store    study.Store
	analyzer *analysis.Analyzer
}

// NewAnalyzeWithLLMTool creates an analyze_with_llm tool.
func NewAnalyzeWithLLMTool(store study.Store, analyzer *analysis.Analyzer) tool.Tool {
	return &AnalyzeWithLLMTool{store: store, analyzer: analyzer}
}

func (t *AnalyzeWithLLMTool) Name() string {
	return "analyze_with_llm"
}

func (t *AnalyzeWithLLMTool) Description() string {
	return "Run a goal-directed language model analysis over a trade study, returning a summary, recommendations, next steps, and optionally an updated data payload."
}

func (t *AnalyzeWithLLMTool) Tags() []string {
	return []string{"study", "llm", "analysis"}
}

func (t *AnalyzeWithLLMTool) InputSchema() *schema.JSONSchema {
	return schema.Object(map[string]*schema.JSONSchema{
		"id": schema.String(),
		"goal": {Enum: []any{
			analysis.GoalSummarize.String(),
			analysis.GoalScore.String(),
			analysis.GoalDraftProposal.String(),
			analysis.GoalIdentifyGaps.String(),
		}},
		"extraContext": schema.String(),
	}, "id", "goal")
}

func (t *AnalyzeWithLLMTool) Execute(ctx context.Context, input map[string]any) (any, error) {
	id, err := idField(input)
	if err != nil {
		return nil, err
	}

	loaded, err := t.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, types.NewError(types.STUDY_NOT_FOUND, "Trade study not found")
	}

	goal, _ := input["goal"].(string)
	extraContext, _ := input["extraContext"].(string)

	return t.analyzer.Analyze(ctx, analysis.Params{
		Title:        loaded.Title,
		Summary:      loaded.Summary,
		Data:         loaded.Data,
		Goal:         analysis.Goal(goal),
		ExtraContext: extraContext,
	})
}
