package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/3star333/tradestudyagent/internal/analysis"
	"github.com/3star333/tradestudyagent/internal/export"
	"github.com/3star333/tradestudyagent/internal/research"
	"github.com/3star333/tradestudyagent/internal/study"
	"github.com/3star333/tradestudyagent/internal/tool"
	"github.com/3star333/tradestudyagent/internal/types"
)

// maxValidatedAssumptions caps how many assumptions one run researches.
const maxValidatedAssumptions = 3

// ResearchParams tunes the research goals. Topic defaults to the study
// title; depth defaults to standard.
type ResearchParams struct {
	Topic string         `json:"topic,omitempty"`
	Depth research.Depth `json:"depth,omitempty"`
}

// Request describes one orchestrator run against an existing study.
type Request struct {
	TradeStudyID   types.ID        `json:"tradeStudyId"`
	Goal           Goal            `json:"goal"`
	ExtraContext   string          `json:"extraContext,omitempty"`
	ResearchParams *ResearchParams `json:"researchParams,omitempty"`
	PublishTargets export.Targets  `json:"publishTargets,omitempty"`
	FolderID       string          `json:"folderId,omitempty"`
}

// Step is one append-only log entry of an orchestrator run, in execution
// order.
type Step struct {
	Tool    string           `json:"tool"`
	Status  types.StepStatus `json:"status"`
	Message string           `json:"message"`
}

// Result is the terminal state of a run. Success carries the final study
// state plus whatever the goal produced; failure reports the study as
// absent, with the failure message appended as a final step. A run never
// surfaces an error any other way: callers can always render the step
// log, even for failures.
type Result struct {
	Success          bool                   `json:"success"`
	Study            *study.TradeStudy      `json:"study"`
	Analysis         *analysis.Analysis     `json:"analysis,omitempty"`
	ResearchFindings *research.Finding      `json:"researchFindings,omitempty"`
	PublishResults   []export.PublishResult `json:"publishResults,omitempty"`
	Steps            []Step                 `json:"steps"`
	Error            string                 `json:"error,omitempty"`
}

// Orchestrator sequences tool registry calls to accomplish a goal against
// a trade study. Dispatch is a flat switch over goals: the tool set and
// goal set are both small and fixed, so a general planner would add
// indirection without buying anything.
type Orchestrator struct {
	registry *tool.Registry
	research bool
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates a base orchestrator. Research goals are rejected; use
// NewWithResearch when the registry carries the research tools.
func New(registry *tool.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewWithResearch creates an orchestrator that additionally dispatches
// the research goals (research_topic, enrich_with_research,
// validate_assumptions).
func NewWithResearch(registry *tool.Registry, opts ...Option) *Orchestrator {
	o := New(registry, opts...)
	o.research = true
	return o
}

// runState accumulates the products of one run.
type runState struct {
	steps    []Step
	analysis *analysis.Analysis
	findings *research.Finding
	publish  []export.PublishResult
}

func (r *runState) step(toolName string, status types.StepStatus, message string) {
	r.steps = append(r.steps, Step{Tool: toolName, Status: status, Message: message})
}

// Run executes one goal against one study. The study is always loaded
// first; a missing study terminates the run immediately with a single
// error step. Any error after a successful load is caught here, appended
// as a final step, and reported through the failed result, never
// propagated.
func (o *Orchestrator) Run(ctx context.Context, req Request) *Result {
	state := &runState{}

	o.logger.Info("agent run starting",
		slog.String("goal", req.Goal.String()),
		slog.String("study_id", req.TradeStudyID.String()))

	if !req.Goal.IsValid() {
		return o.failed(state, fmt.Sprintf("unsupported goal %q", req.Goal))
	}
	if req.Goal.RequiresResearch() && !o.research {
		return o.failed(state, fmt.Sprintf("goal %q requires a research-enabled agent", req.Goal))
	}

	loaded, err := o.loadStudy(ctx, req.TradeStudyID)
	if err != nil || loaded == nil {
		state.step("load_trade_study", types.StepStatusError, "Trade study not found")
		return &Result{
			Success: false,
			Study:   nil,
			Steps:   state.steps,
			Error:   "Trade study not found",
		}
	}
	state.step("load_trade_study", types.StepStatusOK, fmt.Sprintf("Loaded %q", loaded.Title))

	if err := o.dispatch(ctx, req, loaded, state); err != nil {
		return o.failed(state, err.Error())
	}

	// Reload so the caller sees the final persisted state, including any
	// updates made during the run.
	final, err := o.loadStudy(ctx, req.TradeStudyID)
	if err != nil || final == nil {
		final = loaded
	}

	o.logger.Info("agent run finished",
		slog.String("goal", req.Goal.String()),
		slog.Int("steps", len(state.steps)))

	return &Result{
		Success:          true,
		Study:            final,
		Analysis:         state.analysis,
		ResearchFindings: state.findings,
		PublishResults:   state.publish,
		Steps:            state.steps,
	}
}

func (o *Orchestrator) failed(state *runState, message string) *Result {
	o.logger.Warn("agent run failed", slog.String("error", message))
	state.step("orchestrator", types.StepStatusError, message)
	return &Result{
		Success: false,
		Study:   nil,
		Steps:   state.steps,
		Error:   message,
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, req Request, loaded *study.TradeStudy, state *runState) error {
	switch req.Goal {
	case GoalAnalyze:
		return o.runAnalysis(ctx, req, analysis.GoalIdentifyGaps, state)
	case GoalSummarize:
		return o.runAnalysis(ctx, req, analysis.GoalSummarize, state)
	case GoalScore:
		return o.runAnalysis(ctx, req, analysis.GoalScore, state)
	case GoalPublish:
		return o.runPublish(ctx, req, state)
	case GoalFullWorkflow:
		return o.runFullWorkflow(ctx, req, state)
	case GoalResearchTopic:
		return o.runResearchTopic(ctx, req, loaded, state)
	case GoalEnrichWithResearch:
		return o.runEnrichment(ctx, req, loaded, state)
	case GoalValidateAssumptions:
		return o.runAssumptionValidation(ctx, req, loaded, state)
	default:
		return types.NewError(types.TOOL_NOT_FOUND, fmt.Sprintf("unsupported goal %q", req.Goal))
	}
}

// runAnalysis performs a goal-tagged analysis and persists any updated
// data as a best-effort follow-up step.
func (o *Orchestrator) runAnalysis(ctx context.Context, req Request, tag analysis.Goal, state *runState) error {
	result, err := o.analyze(ctx, req.TradeStudyID, tag, req.ExtraContext)
	if err != nil {
		return err
	}
	state.analysis = result
	state.step("analyze_with_llm", types.StepStatusOK, fmt.Sprintf("Completed %s analysis", req.Goal))

	if result.UpdatedData != nil {
		o.persistData(ctx, req.TradeStudyID, result.UpdatedData, nil, state, "Updated study data with analysis results")
	}
	return nil
}

func (o *Orchestrator) runPublish(ctx context.Context, req Request, state *runState) error {
	if !req.PublishTargets.Any() {
		state.step("publish_to_google", types.StepStatusSkipped, "No publish targets specified")
		return nil
	}

	results, err := o.publish(ctx, req)
	if err != nil {
		return err
	}
	state.publish = results
	state.step("publish_to_google", types.StepStatusOK, fmt.Sprintf("Published to %d target(s)", len(results)))
	return nil
}

// runFullWorkflow drafts a proposal, moves the study into review, and
// publishes when targets were supplied. This is the only goal that
// changes study status as a side effect.
func (o *Orchestrator) runFullWorkflow(ctx context.Context, req Request, state *runState) error {
	result, err := o.analyze(ctx, req.TradeStudyID, analysis.GoalDraftProposal, req.ExtraContext)
	if err != nil {
		return err
	}
	state.analysis = result
	state.step("analyze_with_llm", types.StepStatusOK, "Drafted proposal")

	if result.UpdatedData != nil {
		status := types.StudyStatusInReview
		o.persistData(ctx, req.TradeStudyID, result.UpdatedData, &status, state, "Updated study status to in_review")
	}

	if req.PublishTargets.Any() {
		results, err := o.publish(ctx, req)
		if err != nil {
			return err
		}
		state.publish = results
		state.step("publish_to_google", types.StepStatusOK, fmt.Sprintf("Published to %d target(s)", len(results)))
	}
	return nil
}

// runResearchTopic researches a topic and returns findings without
// mutating the study.
func (o *Orchestrator) runResearchTopic(ctx context.Context, req Request, loaded *study.TradeStudy, state *runState) error {
	topic, depth := researchParamsFor(req, loaded)

	finding, err := o.researchTopic(ctx, topic, depth)
	if err != nil {
		return err
	}
	state.findings = finding
	state.step("research_topic", types.StepStatusOK,
		fmt.Sprintf("Researched %q with %d sources", topic, len(finding.Sources)))
	return nil
}

// runEnrichment researches the topic, re-analyzes the study with the
// findings as context, and stamps the research sources into the study
// data.
func (o *Orchestrator) runEnrichment(ctx context.Context, req Request, loaded *study.TradeStudy, state *runState) error {
	topic, depth := researchParamsFor(req, loaded)

	finding, err := o.researchTopic(ctx, topic, depth)
	if err != nil {
		return err
	}
	state.findings = finding
	state.step("research_topic", types.StepStatusOK, fmt.Sprintf("Researched %q", topic))

	result, err := o.analyze(ctx, req.TradeStudyID, analysis.GoalIdentifyGaps, enrichedContext(req.ExtraContext, finding))
	if err != nil {
		return err
	}
	state.analysis = result
	state.step("analyze_with_llm", types.StepStatusOK, "Analyzed study with research findings")

	if result.UpdatedData != nil {
		data := make(map[string]any, len(result.UpdatedData)+2)
		for key, value := range result.UpdatedData {
			data[key] = value
		}
		data["researchSources"] = finding.Sources
		data["lastResearchDate"] = time.Now().UTC().Format(time.RFC3339)
		o.persistData(ctx, req.TradeStudyID, data, nil, state, "Updated study with research findings")
	}
	return nil
}

// runAssumptionValidation researches the study's recorded assumptions,
// up to three of them, independently and concurrently at quick depth.
// Assumptions whose research fails are dropped, not fatal; the run only
// fails when no assumption could be validated at all. Findings aggregate
// in assumption order regardless of completion order.
func (o *Orchestrator) runAssumptionValidation(ctx context.Context, req Request, loaded *study.TradeStudy, state *runState) error {
	assumptions := stringSlice(loaded.Data["assumptions"])
	if len(assumptions) == 0 {
		state.step("validate_assumptions", types.StepStatusSkipped, "No assumptions found to validate")
		return nil
	}
	if len(assumptions) > maxValidatedAssumptions {
		assumptions = assumptions[:maxValidatedAssumptions]
	}

	// Each slot writes only its own index, so aggregation below stays
	// stable on assumption order.
	findings := make([]*research.Finding, len(assumptions))
	var group errgroup.Group
	for i, assumption := range assumptions {
		i, assumption := i, assumption
		group.Go(func() error {
			finding, err := o.researchTopic(ctx, "Validate: "+assumption, research.DepthQuick)
			if err != nil {
				o.logger.Warn("dropping unvalidatable assumption",
					slog.String("assumption", assumption),
					slog.String("error", err.Error()))
				return nil
			}
			findings[i] = finding
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	var (
		validated   int
		keyFindings []string
		sources     []research.Source
	)
	for _, finding := range findings {
		if finding == nil {
			continue
		}
		validated++
		keyFindings = append(keyFindings, finding.Summary)
		limit := len(finding.Sources)
		if limit > 2 {
			limit = 2
		}
		sources = append(sources, finding.Sources[:limit]...)
	}
	if validated == 0 {
		return types.NewError(types.RESEARCH_SEARCH_FAILED, "no assumptions could be validated")
	}

	state.findings = &research.Finding{
		Topic:       "Assumption Validation",
		Summary:     fmt.Sprintf("Validated %d assumptions", validated),
		KeyFindings: keyFindings,
		Sources:     sources,
		Confidence:  types.ConfidenceForSources(len(sources)),
	}
	state.step("research_topic", types.StepStatusOK, fmt.Sprintf("Validated %d assumptions", validated))
	return nil
}

// loadStudy fetches a study through the registry; a missing study is
// (nil, nil).
func (o *Orchestrator) loadStudy(ctx context.Context, id types.ID) (*study.TradeStudy, error) {
	out, err := o.registry.Execute(ctx, "load_trade_study", map[string]any{"id": id.String()})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	loaded, ok := out.(*study.TradeStudy)
	if !ok {
		return nil, types.NewError(types.TOOL_EXECUTION_FAILED, "load_trade_study returned an unexpected type")
	}
	return loaded, nil
}

func (o *Orchestrator) analyze(ctx context.Context, id types.ID, tag analysis.Goal, extraContext string) (*analysis.Analysis, error) {
	out, err := o.registry.Execute(ctx, "analyze_with_llm", map[string]any{
		"id":           id.String(),
		"goal":         tag.String(),
		"extraContext": extraContext,
	})
	if err != nil {
		return nil, err
	}
	result, ok := out.(*analysis.Analysis)
	if !ok {
		return nil, types.NewError(types.TOOL_EXECUTION_FAILED, "analyze_with_llm returned an unexpected type")
	}
	return result, nil
}

func (o *Orchestrator) publish(ctx context.Context, req Request) ([]export.PublishResult, error) {
	out, err := o.registry.Execute(ctx, "publish_to_google", map[string]any{
		"id": req.TradeStudyID.String(),
		"targets": map[string]any{
			"doc":    req.PublishTargets.Doc,
			"sheet":  req.PublishTargets.Sheet,
			"slides": req.PublishTargets.Slide,
			"drive":  req.PublishTargets.Drive,
		},
		"folderId": req.FolderID,
	})
	if err != nil {
		return nil, err
	}
	results, ok := out.([]export.PublishResult)
	if !ok {
		return nil, types.NewError(types.TOOL_EXECUTION_FAILED, "publish_to_google returned an unexpected type")
	}
	return results, nil
}

func (o *Orchestrator) researchTopic(ctx context.Context, topic string, depth research.Depth) (*research.Finding, error) {
	out, err := o.registry.Execute(ctx, "research_topic", map[string]any{
		"topic": topic,
		"depth": depth.String(),
	})
	if err != nil {
		return nil, err
	}
	finding, ok := out.(*research.Finding)
	if !ok {
		return nil, types.NewError(types.TOOL_EXECUTION_FAILED, "research_topic returned an unexpected type")
	}
	return finding, nil
}

// persistData applies a best-effort study update: failures are logged as
// an error step but never fail the run.
func (o *Orchestrator) persistData(ctx context.Context, id types.ID, data map[string]any, status *types.StudyStatus, state *runState, okMessage string) {
	input := map[string]any{
		"id":   id.String(),
		"data": data,
	}
	if status != nil {
		input["status"] = status.String()
	}

	out, err := o.registry.Execute(ctx, "update_trade_study", input)
	if err != nil {
		state.step("update_trade_study", types.StepStatusError, err.Error())
		return
	}
	if out != nil {
		state.step("update_trade_study", types.StepStatusOK, okMessage)
	}
}

// researchParamsFor resolves the effective topic and depth for research
// goals.
func researchParamsFor(req Request, loaded *study.TradeStudy) (string, research.Depth) {
	topic := loaded.Title
	depth := research.DepthStandard
	if req.ResearchParams != nil {
		if req.ResearchParams.Topic != "" {
			topic = req.ResearchParams.Topic
		}
		if req.ResearchParams.Depth.IsValid() {
			depth = req.ResearchParams.Depth
		}
	}
	return topic, depth
}

// enrichedContext prepends the research findings to the caller's extra
// context for the follow-up analysis.
func enrichedContext(extraContext string, finding *research.Finding) string {
	context := "RESEARCH FINDINGS:\n" + finding.Summary
	if len(finding.KeyFindings) > 0 {
		context += "\n\nKEY FINDINGS:"
		for i, keyFinding := range finding.KeyFindings {
			context += fmt.Sprintf("\n%d. %s", i+1, keyFinding)
		}
	}
	if len(finding.Sources) > 0 {
		context += "\n\nSOURCES:"
		for _, source := range finding.Sources {
			context += fmt.Sprintf("\n- %s: %s", source.Title, source.URL)
		}
	}
	if extraContext != "" {
		context = extraContext + "\n\n" + context
	}
	return context
}

// stringSlice extracts string entries from a loosely typed data value.
func stringSlice(value any) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		var out []string
		for _, item := range typed {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
