package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/3star333/tradestudyagent/internal/llm"
	"github.com/3star333/tradestudyagent/internal/types"
)

// topSourceCount is how many search hits get their content fetched.
const topSourceCount = 3

// Pipeline composes search, content fetch, and synthesis into one
// "research a topic" operation.
type Pipeline struct {
	searcher  Searcher
	fetcher   Fetcher
	completer llm.Completer
	logger    *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithCompleter enables model-backed summary synthesis. Without it the
// pipeline produces a deterministic template summary.
func WithCompleter(completer llm.Completer) PipelineOption {
	return func(p *Pipeline) {
		p.completer = completer
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a research pipeline over the given collaborators.
func NewPipeline(searcher Searcher, fetcher Fetcher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		searcher: searcher,
		fetcher:  fetcher,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Research searches the topic, fetches content for the top results
// concurrently, and synthesizes a finding. Individual fetch failures are
// dropped, not fatal; the confidence tier reflects how many sources were
// actually retrieved. Source order follows search result order, never
// fetch completion order.
func (p *Pipeline) Research(ctx context.Context, topic string, depth Depth) (*Finding, error) {
	if !depth.IsValid() {
		depth = DepthStandard
	}

	p.logger.Info("researching topic",
		slog.String("topic", topic),
		slog.String("depth", depth.String()))

	results, err := p.searcher.Search(ctx, topic, depth.MaxResults(), depth)
	if err != nil {
		return nil, err
	}

	fetchCount := topSourceCount
	if len(results) < fetchCount {
		fetchCount = len(results)
	}

	// Fetch the top results in parallel. Each slot writes only its own
	// index, so aggregation below stays stable on input order.
	fetched := make([]*PageContent, fetchCount)
	var group errgroup.Group
	for i := 0; i < fetchCount; i++ {
		i := i
		group.Go(func() error {
			content, fetchErr := p.fetcher.Fetch(ctx, results[i].URL)
			if fetchErr != nil {
				p.logger.Warn("dropping unreachable source",
					slog.String("url", results[i].URL),
					slog.String("error", fetchErr.Error()))
				return nil
			}
			fetched[i] = content
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var (
		sources     []Source
		keyFindings []string
	)
	for i := 0; i < fetchCount; i++ {
		if fetched[i] == nil {
			continue
		}
		sources = append(sources, Source{
			Title:     results[i].Title,
			URL:       results[i].URL,
			Relevance: results[i].Snippet,
		})
		if finding := leadSentence(fetched[i].Content); finding != "" {
			keyFindings = append(keyFindings, finding)
		}
	}

	finding := &Finding{
		Topic:       topic,
		Summary:     p.summarize(ctx, topic, depth, sources, fetched),
		KeyFindings: keyFindings,
		Sources:     sources,
		Confidence:  types.ConfidenceForSources(len(sources)),
	}

	p.logger.Info("research complete",
		slog.String("topic", topic),
		slog.Int("sources", len(sources)),
		slog.String("confidence", finding.Confidence.String()))

	return finding, nil
}

// summarize produces the finding summary, preferring model synthesis and
// degrading to a deterministic template.
func (p *Pipeline) summarize(ctx context.Context, topic string, depth Depth, sources []Source, fetched []*PageContent) string {
	fallback := fmt.Sprintf("Research on %q (depth: %s). Found %d relevant sources.", topic, depth, len(sources))

	if p.completer == nil || len(sources) == 0 {
		return fallback
	}

	var sb strings.Builder
	for i, content := range fetched {
		if content == nil {
			continue
		}
		fmt.Fprintf(&sb, "Source %d: %s\n%s\n\n", i+1, content.Title, content.Content)
	}

	summary, err := p.completer.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: "You summarize research material for engineering trade studies. Reply with a short factual paragraph.",
		UserPrompt:   fmt.Sprintf("Summarize the key points about %q from the following material:\n\n%s", topic, sb.String()),
		Temperature:  0.3,
	})
	if err != nil {
		p.logger.Warn("summary synthesis failed, using template summary",
			slog.String("error", err.Error()))
		return fallback
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return fallback
	}
	return summary
}

// leadSentence extracts the first sentence of a source's content to use
// as a key finding.
func leadSentence(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}

	if idx := strings.IndexAny(content, ".!?"); idx > 0 && idx < 300 {
		return content[:idx+1]
	}
	if len(content) > 200 {
		return content[:200]
	}
	return content
}
