package research

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3star333/tradestudyagent/internal/llm"
	"github.com/3star333/tradestudyagent/internal/types"
)

type fakeSearcher struct {
	results []SearchResult
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, _ string, maxResults int, _ Depth) ([]SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > maxResults {
		return f.results[:maxResults], nil
	}
	return f.results, nil
}

// fakeFetcher serves canned content per URL; URLs in failURLs error out.
// Delays let tests scramble completion order to check aggregation order.
type fakeFetcher struct {
	mu       sync.Mutex
	content  map[string]string
	failURLs map[string]bool
	delays   map[string]time.Duration
	calls    []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*PageContent, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if delay, ok := f.delays[url]; ok {
		time.Sleep(delay)
	}
	if f.failURLs[url] {
		return nil, types.NewError(types.RESEARCH_FETCH_FAILED, "fetch of "+url+" failed")
	}
	return &PageContent{Content: f.content[url], Title: "Title of " + url}, nil
}

func threeResults() []SearchResult {
	return []SearchResult{
		{Title: "Alpha", URL: "https://alpha.example", Snippet: "about alpha"},
		{Title: "Beta", URL: "https://beta.example", Snippet: "about beta"},
		{Title: "Gamma", URL: "https://gamma.example", Snippet: "about gamma"},
	}
}

func TestResearch_HighConfidenceWithThreeSources(t *testing.T) {
	fetcher := &fakeFetcher{content: map[string]string{
		"https://alpha.example": "Alpha is fast. More detail here.",
		"https://beta.example":  "Beta is cheap. More detail here.",
		"https://gamma.example": "Gamma scales well. More detail here.",
	}}
	pipeline := NewPipeline(&fakeSearcher{results: threeResults()}, fetcher)

	finding, err := pipeline.Research(context.Background(), "vector databases", DepthStandard)
	require.NoError(t, err)

	assert.Equal(t, "vector databases", finding.Topic)
	assert.Equal(t, types.ConfidenceHigh, finding.Confidence)
	require.Len(t, finding.Sources, 3)
	assert.Equal(t, []string{"Alpha is fast.", "Beta is cheap.", "Gamma scales well."}, finding.KeyFindings)
	assert.Contains(t, finding.Summary, "3 relevant sources")
}

func TestResearch_FetchFailuresAreDroppedNotFatal(t *testing.T) {
	fetcher := &fakeFetcher{
		content: map[string]string{
			"https://alpha.example": "Alpha works.",
			"https://gamma.example": "Gamma works.",
		},
		failURLs: map[string]bool{"https://beta.example": true},
	}
	pipeline := NewPipeline(&fakeSearcher{results: threeResults()}, fetcher)

	finding, err := pipeline.Research(context.Background(), "topic", DepthStandard)
	require.NoError(t, err)

	assert.Equal(t, types.ConfidenceMedium, finding.Confidence)
	require.Len(t, finding.Sources, 2)
	assert.Equal(t, "Alpha", finding.Sources[0].Title)
	assert.Equal(t, "Gamma", finding.Sources[1].Title)
}

func TestResearch_SourceOrderIsInputOrderNotCompletionOrder(t *testing.T) {
	fetcher := &fakeFetcher{
		content: map[string]string{
			"https://alpha.example": "Alpha content.",
			"https://beta.example":  "Beta content.",
			"https://gamma.example": "Gamma content.",
		},
		// First result finishes last.
		delays: map[string]time.Duration{"https://alpha.example": 50 * time.Millisecond},
	}
	pipeline := NewPipeline(&fakeSearcher{results: threeResults()}, fetcher)

	finding, err := pipeline.Research(context.Background(), "topic", DepthStandard)
	require.NoError(t, err)

	require.Len(t, finding.Sources, 3)
	assert.Equal(t, "Alpha", finding.Sources[0].Title)
	assert.Equal(t, "Beta", finding.Sources[1].Title)
	assert.Equal(t, "Gamma", finding.Sources[2].Title)
}

func TestResearch_AllFetchesFailYieldsLowConfidence(t *testing.T) {
	fetcher := &fakeFetcher{failURLs: map[string]bool{
		"https://alpha.example": true,
		"https://beta.example":  true,
		"https://gamma.example": true,
	}}
	pipeline := NewPipeline(&fakeSearcher{results: threeResults()}, fetcher)

	finding, err := pipeline.Research(context.Background(), "topic", DepthQuick)
	require.NoError(t, err)
	assert.Equal(t, types.ConfidenceLow, finding.Confidence)
	assert.Empty(t, finding.Sources)
}

func TestResearch_SearchErrorPropagates(t *testing.T) {
	pipeline := NewPipeline(&fakeSearcher{err: types.NewError(types.RESEARCH_SEARCH_FAILED, "down")},
		&fakeFetcher{})

	_, err := pipeline.Research(context.Background(), "topic", DepthQuick)
	require.Error(t, err)
	assert.Equal(t, types.RESEARCH_SEARCH_FAILED, types.CodeOf(err))
}

func TestResearch_OnlyTopThreeResultsFetched(t *testing.T) {
	results := append(threeResults(),
		SearchResult{Title: "Delta", URL: "https://delta.example"},
		SearchResult{Title: "Epsilon", URL: "https://epsilon.example"})
	fetcher := &fakeFetcher{content: map[string]string{
		"https://alpha.example": "a.", "https://beta.example": "b.", "https://gamma.example": "c.",
	}}
	pipeline := NewPipeline(&fakeSearcher{results: results}, fetcher)

	_, err := pipeline.Research(context.Background(), "topic", DepthDeep)
	require.NoError(t, err)
	assert.Len(t, fetcher.calls, 3)
}

func TestResearch_ModelSummaryPreferred(t *testing.T) {
	fetcher := &fakeFetcher{content: map[string]string{
		"https://alpha.example": "Alpha content.",
		"https://beta.example":  "Beta content.",
		"https://gamma.example": "Gamma content.",
	}}
	completer := &cannedCompleter{response: "Synthesized: alpha beats beta on latency."}
	pipeline := NewPipeline(&fakeSearcher{results: threeResults()}, fetcher, WithCompleter(completer))

	finding, err := pipeline.Research(context.Background(), "topic", DepthStandard)
	require.NoError(t, err)
	assert.Equal(t, "Synthesized: alpha beats beta on latency.", finding.Summary)
}

func TestResearch_ModelSummaryFailureFallsBackToTemplate(t *testing.T) {
	fetcher := &fakeFetcher{content: map[string]string{
		"https://alpha.example": "Alpha content.",
		"https://beta.example":  "Beta content.",
		"https://gamma.example": "Gamma content.",
	}}
	completer := &cannedCompleter{err: types.NewError(types.LLM_REQUEST_FAILED, "rate limited")}
	pipeline := NewPipeline(&fakeSearcher{results: threeResults()}, fetcher, WithCompleter(completer))

	finding, err := pipeline.Research(context.Background(), "topic", DepthStandard)
	require.NoError(t, err)
	assert.Contains(t, finding.Summary, "3 relevant sources")
}

type cannedCompleter struct {
	response string
	err      error
}

func (c *cannedCompleter) Name() string { return "canned" }

func (c *cannedCompleter) Complete(_ context.Context, _ llm.CompletionRequest) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}
