package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/3star333/tradestudyagent/internal/types"
)

// maxContentLength is the fixed cap on extracted page text.
const maxContentLength = 5000

// maxBodyBytes caps how much of a response body is read before parsing.
const maxBodyBytes = 2 << 20

var multiSpacePattern = regexp.MustCompile(`\s+`)

// Fetcher is the content retrieval collaborator boundary.
type Fetcher interface {
	// Fetch retrieves a URL and reduces it to plain text. Failures are
	// typed errors, never a silent empty result.
	Fetch(ctx context.Context, url string) (*PageContent, error)
}

// HTTPFetcher retrieves pages over HTTP and strips markup with an HTML
// tokenizer walk.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher using the given client, or
// http.DefaultClient when nil.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

// Fetch retrieves the URL and extracts plain text, a title, and a meta
// description when present. Content is truncated to a fixed maximum.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*PageContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, types.WrapError(types.RESEARCH_FETCH_FAILED, "failed to create request for "+url, err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; tradestudyagent/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, types.WrapError(types.RESEARCH_FETCH_FAILED, "failed to fetch "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewError(types.RESEARCH_FETCH_FAILED,
			fmt.Sprintf("fetch of %s returned HTTP %d", url, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, types.WrapError(types.RESEARCH_FETCH_FAILED, "failed to read body of "+url, err)
	}

	return extractContent(string(body)), nil
}

// extractContent reduces an HTML document to plain text, capturing the
// title and meta description along the way.
func extractContent(rawHTML string) *PageContent {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		// html.Parse recovers from almost anything; treat a hard failure
		// as a page with no extractable markup.
		return &PageContent{Content: truncate(strings.TrimSpace(rawHTML))}
	}

	content := &PageContent{}
	var sb strings.Builder
	walkText(doc, &sb, content, 0)

	text := multiSpacePattern.ReplaceAllString(sb.String(), " ")
	content.Content = truncate(strings.TrimSpace(text))

	return content
}

func walkText(n *html.Node, sb *strings.Builder, content *PageContent, depth int) {
	if depth > 50 {
		return // prevent excessive recursion
	}

	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg", "nav", "footer", "header":
			return
		case "title":
			if content.Title == "" {
				content.Title = strings.TrimSpace(textOf(n))
			}
			return
		case "meta":
			if strings.EqualFold(getAttr(n, "name"), "description") && content.Description == "" {
				content.Description = strings.TrimSpace(getAttr(n, "content"))
			}
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, sb, content, depth+1)
	}
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// truncate caps s at maxContentLength bytes without splitting a
// multi-byte rune at the cut point.
func truncate(s string) string {
	if len(s) <= maxContentLength {
		return s
	}
	cut := maxContentLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
