// Package builtins provides the built-in tools the agent orchestrator
// sequences: trade study access, language model analysis, publishing,
// and research.
package builtins

import (
	"github.com/3star333/tradestudyagent/internal/analysis"
	"github.com/3star333/tradestudyagent/internal/export"
	"github.com/3star333/tradestudyagent/internal/research"
	"github.com/3star333/tradestudyagent/internal/study"
	"github.com/3star333/tradestudyagent/internal/tool"
)

// Config holds dependencies for creating builtin tools. Tools whose
// dependencies are missing are skipped, not errored, so a partially
// configured deployment still gets the tools it can support.
type Config struct {
	// Store is required for the study tools and the analyze/publish tools.
	Store study.Store

	// Analyzer is required for analyze_with_llm.
	Analyzer *analysis.Analyzer

	// Coordinator is required for publish_to_google.
	Coordinator *export.Coordinator

	// Searcher is required for web_search.
	Searcher research.Searcher

	// Fetcher is required for fetch_content.
	Fetcher research.Fetcher

	// Pipeline is required for research_topic.
	Pipeline *research.Pipeline
}

// Register registers all builtin tools whose dependencies are available.
// Returns the first registration error encountered.
func Register(registry *tool.Registry, cfg Config) error {
	var tools []tool.Tool

	if cfg.Store != nil {
		tools = append(tools,
			NewLoadTradeStudyTool(cfg.Store),
			NewUpdateTradeStudyTool(cfg.Store),
		)
		if cfg.Analyzer != nil {
			tools = append(tools, NewAnalyzeWithLLMTool(cfg.Store, cfg.Analyzer))
		}
		if cfg.Coordinator != nil {
			tools = append(tools, NewPublishToGoogleTool(cfg.Store, cfg.Coordinator))
		}
	}

	if cfg.Searcher != nil {
		tools = append(tools, NewWebSearchTool(cfg.Searcher))
	}
	if cfg.Fetcher != nil {
		tools = append(tools, NewFetchContentTool(cfg.Fetcher))
	}
	if cfg.Pipeline != nil {
		tools = append(tools, NewResearchTopicTool(cfg.Pipeline))
	}

	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return err
		}
	}

	return nil
}

// Names returns the names of all builtin tools.
func Names() []string {
	return []string{
		"load_trade_study",
		"update_trade_study",
		"analyze_with_llm",
		"publish_to_google",
		"web_search",
		"fetch_content",
		"research_topic",
	}
}
