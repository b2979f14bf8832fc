package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/3star333/tradestudyagent/internal/types"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Searcher is the web search collaborator boundary.
type Searcher interface {
	// Search returns up to maxResults hits for the query. The depth tier
	// selects the provider-side search effort.
	Search(ctx context.Context, query string, maxResults int, depth Depth) ([]SearchResult, error)
}

// TavilySearcher queries the Tavily search API over plain HTTP.
type TavilySearcher struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewTavilySearcher creates a searcher for the given API key.
func NewTavilySearcher(apiKey string) *TavilySearcher {
	return &TavilySearcher{
		apiKey:   apiKey,
		endpoint: tavilyEndpoint,
		client:   http.DefaultClient,
	}
}

// WithEndpoint overrides the API endpoint, used by tests.
func (s *TavilySearcher) WithEndpoint(endpoint string) *TavilySearcher {
	s.endpoint = endpoint
	return s
}

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search queries Tavily. Deep research maps to the provider's "advanced"
// search depth; everything else uses "basic".
func (s *TavilySearcher) Search(ctx context.Context, query string, maxResults int, depth Depth) ([]SearchResult, error) {
	searchDepth := "basic"
	if depth == DepthDeep {
		searchDepth = "advanced"
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:      s.apiKey,
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: searchDepth,
	})
	if err != nil {
		return nil, types.WrapError(types.RESEARCH_SEARCH_FAILED, "failed to encode search request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, types.WrapError(types.RESEARCH_SEARCH_FAILED, "failed to create search request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, types.WrapError(types.RESEARCH_SEARCH_FAILED, "search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewError(types.RESEARCH_SEARCH_FAILED,
			fmt.Sprintf("search returned HTTP %d", resp.StatusCode))
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, types.WrapError(types.RESEARCH_SEARCH_FAILED, "failed to read search response", err)
	}

	var decoded tavilyResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, types.WrapError(types.RESEARCH_SEARCH_FAILED, "failed to decode search response", err)
	}

	results := make([]SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
		if len(results) >= maxResults {
			break
		}
	}

	return results, nil
}

// PlaceholderSearcher stands in when no search credential is configured.
// It returns a single synthetic result so research-dependent pipelines
// still complete instead of failing.
type PlaceholderSearcher struct{}

// NewPlaceholderSearcher creates the credential-less stand-in searcher.
func NewPlaceholderSearcher() *PlaceholderSearcher {
	return &PlaceholderSearcher{}
}

// Search returns one synthetic placeholder result.
func (s *PlaceholderSearcher) Search(_ context.Context, query string, _ int, _ Depth) ([]SearchResult, error) {
	return []SearchResult{
		{
			Title:   "Research result (API key required)",
			URL:     "https://tavily.com",
			Snippet: fmt.Sprintf("Configure a search API key to enable live research for %q.", query),
		},
	}, nil
}
