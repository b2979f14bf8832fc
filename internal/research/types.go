package research

import (
	"github.com/3star333/tradestudyagent/internal/types"
)

// Depth controls how wide a research pass fans out.
type Depth string

const (
	DepthQuick    Depth = "quick"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// String returns the string representation of Depth
func (d Depth) String() string {
	return string(d)
}

// IsValid checks if the Depth is a valid value
func (d Depth) IsValid() bool {
	switch d {
	case DepthQuick, DepthStandard, DepthDeep:
		return true
	default:
		return false
	}
}

// MaxResults returns the search result budget for this depth tier.
func (d Depth) MaxResults() int {
	switch d {
	case DepthQuick:
		return 3
	case DepthDeep:
		return 10
	default:
		return 5
	}
}

// SearchResult is one hit from the web search collaborator.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Source is a retrieved reference folded into a research finding.
type Source struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Relevance string `json:"relevance"`
}

// Finding is the synthesized output of one research pass. It is
// ephemeral: callers may fold it into a study's data, but nothing here is
// persisted by the pipeline itself.
type Finding struct {
	Topic       string           `json:"topic"`
	Summary     string           `json:"summary"`
	KeyFindings []string         `json:"keyFindings"`
	Sources     []Source         `json:"sources"`
	Confidence  types.Confidence `json:"confidence"`
}

// PageContent is the reduced plain-text form of a fetched page.
type PageContent struct {
	Content     string `json:"content"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}
