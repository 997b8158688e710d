package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/nao1215/nightcrawler/internal/crawler"
)

// Default Chrome fetcher settings.
const (
	// DefaultFetchTimeout bounds a single page load, including rendering
	// and the settle delay.
	DefaultFetchTimeout = 60 * time.Second

	// DefaultSettleDelay is how long to wait after scrolling to the bottom
	// of the page, giving lazy-loaded content a chance to appear.
	DefaultSettleDelay = 2 * time.Second
)

// extractLinksJS collects candidate link values from the rendered DOM:
// anchors, script sources, and stylesheet references. Raw attribute values
// are returned; resolution and scope filtering happen in the engine.
const extractLinksJS = `(() => {
	const out = [];
	for (const el of document.querySelectorAll("a[href], script[src], link[rel=stylesheet]")) {
		const v = el.getAttribute("href") || el.getAttribute("src");
		if (v) {
			out.push(v);
		}
	}
	return out;
})()`

// Chrome fetches pages with a headless Chrome browser driven by chromedp.
//
// One browser process is shared for the fetcher's lifetime; each FetchPage
// call opens a fresh tab and closes it when done. Tabs are cheap, browsers
// are not, and a fresh tab per page avoids state leaking between fetches.
type Chrome struct {
	browserCtx context.Context
	cancels    []context.CancelFunc

	timeout time.Duration
	settle  time.Duration
	agents  *agentPool
	logger  *slog.Logger
}

// ChromeOption configures a Chrome fetcher.
type ChromeOption func(*Chrome)

// WithFetchTimeout sets the per-page deadline.
func WithFetchTimeout(d time.Duration) ChromeOption {
	return func(c *Chrome) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSettleDelay sets the wait after scrolling to the page bottom.
func WithSettleDelay(d time.Duration) ChromeOption {
	return func(c *Chrome) {
		if d >= 0 {
			c.settle = d
		}
	}
}

// WithUserAgents sets the user-agent rotation pool. Each fetch picks one at
// random. An empty slice keeps the built-in pool.
func WithUserAgents(agents []string) ChromeOption {
	return func(c *Chrome) {
		c.agents = newAgentPool(agents)
	}
}

// WithChromeLogger sets a custom logger.
func WithChromeLogger(logger *slog.Logger) ChromeOption {
	return func(c *Chrome) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChrome starts a headless browser and returns a fetcher backed by it.
// The caller must Close the fetcher to shut the browser down.
func NewChrome(ctx context.Context, opts ...ChromeOption) (*Chrome, error) {
	c := &Chrome{
		timeout: DefaultFetchTimeout,
		settle:  DefaultSettleDelay,
		agents:  newAgentPool(nil),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	c.browserCtx = browserCtx
	c.cancels = []context.CancelFunc{browserCancel, allocCancel}

	// Start the browser process now so the first fetch does not pay the
	// startup cost inside its own deadline, and so a missing Chrome binary
	// surfaces here instead of as per-page failures.
	if err := chromedp.Run(browserCtx); err != nil {
		c.Close()
		return nil, fmt.Errorf("start headless browser: %w", err)
	}

	return c, nil
}

// Close shuts down the shared browser process.
func (c *Chrome) Close() {
	for _, cancel := range c.cancels {
		cancel()
	}
}

// FetchPage renders pageURL in a new tab and returns the links found in the
// final DOM together with the response headers of the document itself.
// Subresource responses (images, scripts, XHR) are not recorded.
func (c *Chrome) FetchPage(ctx context.Context, pageURL string) (*crawler.FetchResult, error) {
	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	defer tabCancel()

	runCtx, cancel := context.WithTimeout(tabCtx, c.timeout)
	defer cancel()

	// The tab lives under the browser context, not the caller's; propagate
	// the caller's cancellation by hand.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	// The first document response carries the headers we want. Redirect
	// hops are reported separately and never match ResourceTypeDocument
	// here, so this observes the response for the final document.
	var headerMu sync.Mutex
	var headers map[string]string
	chromedp.ListenTarget(runCtx, func(ev any) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		headerMu.Lock()
		defer headerMu.Unlock()
		if headers != nil {
			return
		}
		headers = make(map[string]string, len(resp.Response.Headers))
		for name, value := range resp.Response.Headers {
			headers[name] = fmt.Sprint(value)
		}
	})

	userAgent := c.agents.pick()
	start := time.Now()

	var links []string
	err := chromedp.Run(runCtx,
		network.Enable(),
		emulation.SetUserAgentOverride(userAgent),
		chromedp.Navigate(pageURL),
		waitDocumentReady(),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(c.settle),
		chromedp.Evaluate(extractLinksJS, &links),
	)
	if err != nil {
		return nil, wrapFetchError(pageURL, err)
	}

	headerMu.Lock()
	captured := headers
	headerMu.Unlock()

	c.logger.Debug("page rendered",
		"url", pageURL,
		"links", len(links),
		"headers", len(captured),
		"userAgent", userAgent,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return &crawler.FetchResult{Links: links, Headers: captured}, nil
}

// waitDocumentReady polls document.readyState until the load event has
// fired. chromedp.WaitReady targets elements, not document state, so this
// mirrors a browser "wait for load" by polling.
func waitDocumentReady() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			var state string
			if err := chromedp.Evaluate(`document.readyState`, &state).Do(ctx); err != nil {
				return err
			}
			if state == "complete" {
				return nil
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
}

var _ crawler.Fetcher = (*Chrome)(nil)
