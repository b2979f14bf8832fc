package builtins

import (
	"context"

	"github.com/3star333/tradestudyagent/internal/research"
	"github.com/3star333/tradestudyagent/internal/schema"
	"github.com/3star333/tradestudyagent/internal/tool"
	"github.com/3star333/tradestudyagent/internal/types"
)

// depthSchema constrains depth inputs to the known tiers.
func depthSchema() *schema.JSONSchema {
	return &schema.JSONSchema{Enum: []any{
		research.DepthQuick.String(),
		research.DepthStandard.String(),
		research.DepthDeep.String(),
	}}
}

// WebSearchTool runs a web search and returns raw results.
type WebSearchTool struct {
	searcher research.Searcher
}

// NewWebSearchTool creates a web_search tool over the searcher.
func NewWebSearchTool(searcher research.Searcher) tool.Tool {
	return &WebSearchTool{searcher: searcher}
}

func (t *WebSearchTool) Name() string {
	return "web_search"
}

func (t *WebSearchTool) Description() string {
	return "Search the web for a query, returning title/url/snippet results. Result count follows the requested depth tier."
}

func (t *WebSearchTool) Tags() []string {
	return []string{"research", "search"}
}

func (t *WebSearchTool) InputSchema() *schema.JSONSchema {
	return schema.Object(map[string]*schema.JSONSchema{
		"query": schema.String(),
		"depth": depthSchema(),
	}, "query")
}

func (t *WebSearchTool) Execute(ctx context.Context, input map[string]any) (any, error) {
	query, _ := input["query"].(string)
	if query == "" {
		return nil, types.NewError(types.TOOL_INVALID_INPUT, "query cannot be empty")
	}

	depth := depthField(input)
	return t.searcher.Search(ctx, query, depth.MaxResults(), depth)
}

// FetchContentTool retrieves a URL and reduces it to plain text.
type FetchContentTool struct {
	fetcher research.Fetcher
}

// NewFetchContentTool creates a fetch_content tool over the fetcher.
func NewFetchContentTool(fetcher research.Fetcher) tool.Tool {
	return &FetchContentTool{fetcher: fetcher}
}

func (t *FetchContentTool) Name() string {
	return "fetch_content"
}

func (t *FetchContentTool) Description() string {
	return "Fetch a URL and extract readable text content, plus the page title and description when present."
}

func (t *FetchContentTool) Tags() []string {
	return []string{"research", "fetch"}
}

func (t *FetchContentTool) InputSchema() *schema.JSONSchema {
	return schema.Object(map[string]*schema.JSONSchema{
		"url": schema.String(),
	}, "url")
}

func (t *FetchContentTool) Execute(ctx context.Context, input map[string]any) (any, error) {
	url, _ := input["url"].(string)
	if url == "" {
		return nil, types.NewError(types.TOOL_INVALID_INPUT, "url cannot be empty")
	}

	return t.fetcher.Fetch(ctx, url)
}

// ResearchTopicTool runs the full research pipeline for a topic.
type ResearchTopicTool struct {
	pipeline *research.Pipeline
}

// NewResearchTopicTool creates a research_topic tool over the pipeline.
func NewResearchTopicTool(pipeline *research.Pipeline) tool.Tool {
	return &ResearchTopicTool{pipeline: pipeline}
}

func (t *ResearchTopicTool) Name() string {
	return "research_topic"
}

func (t *ResearchTopicTool) Description() string {
	return "Research a topic end to end: search, fetch top sources, and synthesize a finding with a confidence tier."
}

func (t *ResearchTopicTool) Tags() []string {
	return []string{"research", "synthesis"}
}

func (t *ResearchTopicTool) InputSchema() *schema.JSONSchema {
	return schema.Object(map[string]*schema.JSONSchema{
		"topic": schema.String(),
		"depth": depthSchema(),
	}, "topic")
}

func (t *ResearchTopicTool) Execute(ctx context.Context, input map[string]any) (any, error) {
	topic, _ := input["topic"].(string)
	if topic == "" {
		return nil, types.NewError(types.TOOL_INVALID_INPUT, "topic cannot be empty")
	}

	return t.pipeline.Research(ctx, topic, depthField(input))
}

func depthField(input map[string]any) research.Depth {
	raw, _ := input["depth"].(string)
	depth := research.Depth(raw)
	if !depth.IsValid() {
		return research.DepthStandard
	}
	return depth
}
