package agent

// Goal is a named operation the orchestrator can perform on an existing
// trade study.
type Goal string

const (
	GoalAnalyze      Goal = "analyze"
	GoalScore        Goal = "score"
	GoalSummarize    Goal = "summarize"
	GoalPublish      Goal = "publish"
	GoalFullWorkflow Goal = "full_workflow"

	// Research goals require an orchestrator constructed with a research
	// pipeline.
	GoalResearchTopic       Goal = "research_topic"
	GoalEnrichWithResearch  Goal = "enrich_with_research"
	GoalValidateAssumptions Goal = "validate_assumptions"
)

// String returns the string representation of Goal
func (g Goal) String() string {
	return string(g)
}

// IsValid checks if the Goal is a valid value
func (g Goal) IsValid() bool {
	switch g {
	case GoalAnalyze, GoalScore, GoalSummarize, GoalPublish, GoalFullWorkflow,
		GoalResearchTopic, GoalEnrichWithResearch, GoalValidateAssumptions:
		return true
	default:
		return false
	}
}

// RequiresResearch reports whether the goal needs the research pipeline.
func (g Goal) RequiresResearch() bool {
	switch g {
	case GoalResearchTopic, GoalEnrichWithResearch, GoalValidateAssumptions:
		return true
	default:
		return false
	}
}
