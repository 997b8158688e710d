package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/nightcrawler/internal/model"
)

// Default engine settings.
const (
	// DefaultConcurrency is the number of crawl workers. Fetches are
	// I/O-bound (network plus script execution), so a small pool already
	// keeps the browser busy without hammering the target.
	DefaultConcurrency = 5

	// DefaultMaxRequests of 0 means no request cap. Documented loudly:
	// an uncapped crawl of a large or cyclic site can run for a very long
	// time, bounded only by the seen-set.
	DefaultMaxRequests = 0
)

// Engine coordinates a crawl: it owns the frontier, the header aggregate,
// and the request budget, and runs a fixed pool of workers until the
// frontier drains or the budget is spent.
type Engine struct {
	// fetcher loads pages. Usually a renderer.Chrome or renderer.Plain.
	fetcher Fetcher

	// concurrency is the fixed worker count for the crawl's lifetime.
	concurrency int

	// maxRequests caps total fetches. Zero means unlimited.
	maxRequests int

	// excludedHeaders are header names never recorded in the aggregate.
	excludedHeaders []string

	// filter optionally restricts which in-scope URLs are crawled.
	filter *PatternFilter

	// logger receives per-URL diagnostics. Fetch failures are logged and
	// skipped; they never abort the crawl.
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency sets the worker count. Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithMaxRequests caps the total number of fetches. Zero or negative means
// unlimited.
func WithMaxRequests(n int) Option {
	return func(e *Engine) {
		e.maxRequests = n
	}
}

// WithExcludedHeaders sets header names that are never recorded in the
// header aggregate. Names are matched case-insensitively.
func WithExcludedHeaders(names []string) Option {
	return func(e *Engine) {
		e.excludedHeaders = names
	}
}

// WithPatternFilter restricts which in-scope URLs are crawled.
func WithPatternFilter(filter *PatternFilter) Option {
	return func(e *Engine) {
		e.filter = filter
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine using the given fetcher.
func NewEngine(fetcher Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
		maxRequests: DefaultMaxRequests,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// crawlState is the shared mutable state of one crawl, owned by the engine
// and passed to every worker. Each field guards itself; nothing here is
// locked across a fetch call.
type crawlState struct {
	frontier   *Frontier
	headers    *HeaderSet
	budget     *Budget
	normalizer *Normalizer

	mu      sync.Mutex
	fetched []string
	failed  int
}

// addFetched appends a successfully fetched URL.
func (s *crawlState) addFetched(pageURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, pageURL)
}

// addFailed counts one failed fetch.
func (s *crawlState) addFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
}

// Crawl runs a full crawl from seedURL and returns the final snapshot.
//
// It fails fast with ErrInvalidSeed if the seed is not an absolute http(s)
// URL. Per-URL fetch failures are logged and skipped; the crawl always
// completes with whatever subset succeeded. On context cancellation the
// partial result is returned together with the context's error.
func (e *Engine) Crawl(ctx context.Context, seedURL string) (*model.CrawlResult, error) {
	if e.fetcher == nil {
		return nil, ErrNoFetcher
	}

	seed, normalizedSeed, err := ParseSeed(seedURL)
	if err != nil {
		return nil, err
	}

	state := &crawlState{
		frontier:   NewFrontier(),
		headers:    NewHeaderSet(e.excludedHeaders),
		budget:     NewBudget(e.maxRequests),
		normalizer: NewNormalizer(seed),
	}

	e.logger.Info("starting crawl",
		"seed", normalizedSeed,
		"concurrency", e.concurrency,
		"maxRequests", e.maxRequests,
	)
	if state.budget.Unlimited() {
		e.logger.Debug("no request cap set; crawl is bounded only by the site's URL surface")
	}

	// Cancellation reaches blocked workers by closing the frontier.
	crawlCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-crawlCtx.Done()
		state.frontier.Close()
	}()

	state.frontier.EnqueueIfNew(normalizedSeed)

	start := time.Now()
	var g errgroup.Group
	for range e.concurrency {
		g.Go(func() error {
			e.worker(crawlCtx, state)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers report failures via state, not errors

	result := model.NewCrawlResult(state.fetched, state.headers.Snapshot(), model.CrawlStats{
		PagesFetched: len(state.fetched),
		PagesFailed:  state.failed,
		URLsSeen:     state.frontier.SeenCount(),
	})

	e.logger.Info("crawl finished",
		"fetched", result.Stats.PagesFetched,
		"failed", result.Stats.PagesFailed,
		"seen", result.Stats.URLsSeen,
		"headers", len(result.Headers),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// worker is one crawl worker loop: pull a URL, claim a budget slot, fetch,
// feed discoveries back. It exits when the frontier reports drain/closure or
// the budget runs out.
func (e *Engine) worker(ctx context.Context, state *crawlState) {
	for {
		pageURL, ok := state.frontier.Next()
		if !ok {
			return
		}

		if !state.budget.Acquire() {
			// Budget spent: stop the whole pool. In-flight fetches on
			// sibling workers still complete and record their headers.
			state.frontier.Finish()
			state.frontier.Close()
			return
		}

		e.visit(ctx, state, pageURL)
		state.frontier.Finish()
	}
}

// visit fetches one page and merges its outcome into the shared state. The
// fetch happens outside any lock.
func (e *Engine) visit(ctx context.Context, state *crawlState, pageURL string) {
	result, err := e.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		// Log, count, move on. No retry.
		e.logger.Warn("fetch failed", "url", pageURL, "error", err)
		state.addFailed()
		return
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		// Cannot happen for URLs that passed normalization, but a fetcher
		// bug should not panic the worker.
		e.logger.Error("unparsable page URL from frontier", "url", pageURL, "error", err)
		state.addFailed()
		return
	}

	enqueued := 0
	for _, raw := range result.Links {
		normalized, class := state.normalizer.Normalize(raw, base)
		if class != LinkInScope {
			continue
		}
		if !e.filter.Allow(normalized) {
			continue
		}
		if state.frontier.EnqueueIfNew(normalized) {
			enqueued++
		}
	}

	state.headers.Record(result.Headers)
	state.addFetched(pageURL)

	e.logger.Debug("page fetched",
		"url", pageURL,
		"links", len(result.Links),
		"enqueued", enqueued,
	)
}
