package renderer

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nao1215/nightcrawler/internal/crawler"
)

// DefaultMaxBodySize limits how much of a response body the plain fetcher
// reads when parsing for links.
const DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// Plain fetches pages with a bare HTTP GET and extracts links from the
// static HTML. JavaScript never runs, so links injected at runtime are
// invisible to it.
type Plain struct {
	client      *http.Client
	timeout     time.Duration
	maxBodySize int64
	agents      *agentPool
	logger      *slog.Logger
}

// PlainOption configures a Plain fetcher.
type PlainOption func(*Plain)

// WithPlainClient sets a custom HTTP client, e.g. one with a proxy.
func WithPlainClient(client *http.Client) PlainOption {
	return func(p *Plain) {
		if client != nil {
			p.client = client
		}
	}
}

// WithPlainTimeout sets the per-page deadline.
func WithPlainTimeout(d time.Duration) PlainOption {
	return func(p *Plain) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithPlainMaxBodySize sets the response body read limit.
func WithPlainMaxBodySize(n int64) PlainOption {
	return func(p *Plain) {
		if n > 0 {
			p.maxBodySize = n
		}
	}
}

// WithPlainUserAgents sets the user-agent rotation pool.
func WithPlainUserAgents(agents []string) PlainOption {
	return func(p *Plain) {
		p.agents = newAgentPool(agents)
	}
}

// WithPlainLogger sets a custom logger.
func WithPlainLogger(logger *slog.Logger) PlainOption {
	return func(p *Plain) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPlain creates a plain HTTP fetcher.
func NewPlain(opts ...PlainOption) *Plain {
	p := &Plain{
		client:      http.DefaultClient,
		timeout:     DefaultFetchTimeout,
		maxBodySize: DefaultMaxBodySize,
		agents:      newAgentPool(nil),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchPage performs a GET on pageURL and returns the links found in the
// document together with the response headers. Non-HTML responses yield
// headers but no links. Any HTTP status counts as a successful fetch; the
// server answered, and its headers are the point of the exercise.
func (p *Plain) FetchPage(ctx context.Context, pageURL string) (*crawler.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, wrapFetchError(pageURL, err)
	}
	req.Header.Set("User-Agent", p.agents.pick())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, wrapFetchError(pageURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	headers := make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		headers[name] = resp.Header.Get(name)
	}

	result := &crawler.FetchResult{Headers: headers}

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // drain for keep-alive
		return result, nil
	}

	links, err := extractLinks(io.LimitReader(resp.Body, p.maxBodySize))
	if err != nil {
		return nil, wrapFetchError(pageURL, err)
	}
	result.Links = links

	p.logger.Debug("page fetched",
		"url", pageURL,
		"status", resp.StatusCode,
		"links", len(links),
	)
	return result, nil
}

// extractLinks walks the parsed DOM and collects raw link values from the
// same elements the rendering fetcher inspects: anchors, script sources,
// and stylesheet references.
func extractLinks(content io.Reader) ([]string, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if href := getAttr(n, "href"); href != "" {
					links = append(links, href)
				}
			case "script":
				if src := getAttr(n, "src"); src != "" {
					links = append(links, src)
				}
			case "link":
				if getAttr(n, "rel") == "stylesheet" {
					if href := getAttr(n, "href"); href != "" {
						links = append(links, href)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

var _ crawler.Fetcher = (*Plain)(nil)
