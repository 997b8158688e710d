package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
)

// fakePage is one node of an in-memory site used by engine tests.
type fakePage struct {
	links   []string
	headers map[string]string
	err     error
}

// fakeSite serves fakePages through the Fetcher interface and counts how
// often each URL was requested.
type fakeSite struct {
	mu    sync.Mutex
	pages map[string]fakePage
	hits  map[string]int
}

func newFakeSite(pages map[string]fakePage) *fakeSite {
	return &fakeSite{pages: pages, hits: make(map[string]int)}
}

func (s *fakeSite) FetchPage(_ context.Context, pageURL string) (*FetchResult, error) {
	s.mu.Lock()
	s.hits[pageURL]++
	page, ok := s.pages[pageURL]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no such page: %s", pageURL)
	}
	if page.err != nil {
		return nil, page.err
	}
	return &FetchResult{Links: page.links, Headers: page.headers}, nil
}

func (s *fakeSite) hitCount(pageURL string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[pageURL]
}

func (s *fakeSite) totalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEngineCrawl(t *testing.T) {
	t.Parallel()

	t.Run("visits each page once despite cycles and returns sorted URLs", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{
			"https://example.com/": {
				links:   []string{"/a", "/b"},
				headers: map[string]string{"Server": "nginx"},
			},
			"https://example.com/a": {
				// Back-link to the seed: must not cause a refetch.
				links:   []string{"/", "/b"},
				headers: map[string]string{"X-Frame-Options": "DENY"},
			},
			"https://example.com/b": {
				links:   []string{"/a"},
				headers: map[string]string{"Server": "apache"},
			},
		})

		e := NewEngine(site, WithLogger(quietLogger()))
		result, err := e.Crawl(context.Background(), "https://example.com/")
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}

		wantURLs := []string{
			"https://example.com/",
			"https://example.com/a",
			"https://example.com/b",
		}
		if !reflect.DeepEqual(result.URLs, wantURLs) {
			t.Errorf("Crawl() URLs = %v, want %v", result.URLs, wantURLs)
		}

		for _, u := range wantURLs {
			if got := site.hitCount(u); got != 1 {
				t.Errorf("page %s fetched %d times, want 1", u, got)
			}
		}

		// First recorded value wins; the duplicate Server from /b loses.
		if got := result.Headers["Server"]; got != "nginx" && got != "apache" {
			t.Errorf("Headers[Server] = %q, want one of the observed values", got)
		}
		if got := result.Headers["X-Frame-Options"]; got != "DENY" {
			t.Errorf("Headers[X-Frame-Options] = %q, want DENY", got)
		}

		if result.Stats.PagesFetched != 3 || result.Stats.PagesFailed != 0 {
			t.Errorf("Stats = %+v, want 3 fetched / 0 failed", result.Stats)
		}
	})

	t.Run("out-of-scope and invalid links are never fetched", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{
			"https://example.com/": {
				links: []string{
					"https://other.example.org/",
					"mailto:admin@example.com",
					"/style.css",
					"#top",
					"/page",
				},
			},
			"https://example.com/page": {},
		})

		e := NewEngine(site, WithLogger(quietLogger()))
		result, err := e.Crawl(context.Background(), "https://example.com/")
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}

		want := []string{"https://example.com/", "https://example.com/page"}
		if !reflect.DeepEqual(result.URLs, want) {
			t.Errorf("Crawl() URLs = %v, want %v", result.URLs, want)
		}
		if got := site.hitCount("https://other.example.org/"); got != 0 {
			t.Errorf("out-of-scope page fetched %d times, want 0", got)
		}
	})

	t.Run("request cap bounds total fetches", func(t *testing.T) {
		t.Parallel()

		// A long chain: each page links to the next.
		pages := make(map[string]fakePage)
		for i := range 50 {
			pages[fmt.Sprintf("https://example.com/p%d", i)] = fakePage{
				links: []string{fmt.Sprintf("/p%d", i+1)},
			}
		}

		const limit = 5
		site := newFakeSite(pages)
		e := NewEngine(site,
			WithMaxRequests(limit),
			WithConcurrency(3),
			WithLogger(quietLogger()),
		)
		result, err := e.Crawl(context.Background(), "https://example.com/p0")
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}

		if got := site.totalHits(); got > limit {
			t.Errorf("total fetches = %d, want at most %d", got, limit)
		}
		if got := len(result.URLs); got > limit {
			t.Errorf("len(URLs) = %d, want at most %d", got, limit)
		}
	})

	t.Run("fetch failures are skipped, not fatal", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{
			"https://example.com/": {
				links: []string{"/broken", "/ok"},
			},
			"https://example.com/broken": {
				err: errors.New("connection reset"),
			},
			"https://example.com/ok": {
				headers: map[string]string{"Server": "nginx"},
			},
		})

		e := NewEngine(site, WithLogger(quietLogger()))
		result, err := e.Crawl(context.Background(), "https://example.com/")
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}

		want := []string{"https://example.com/", "https://example.com/ok"}
		if !reflect.DeepEqual(result.URLs, want) {
			t.Errorf("Crawl() URLs = %v, want %v", result.URLs, want)
		}
		if result.Stats.PagesFailed != 1 {
			t.Errorf("Stats.PagesFailed = %d, want 1", result.Stats.PagesFailed)
		}
		if result.Headers["Server"] != "nginx" {
			t.Errorf("Headers[Server] = %q, want nginx", result.Headers["Server"])
		}
	})

	t.Run("excluded headers never appear in the result", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{
			"https://example.com/": {
				headers: map[string]string{
					"Date":   "Mon, 02 Jan 2006 15:04:05 GMT",
					"Server": "nginx",
				},
			},
		})

		e := NewEngine(site,
			WithExcludedHeaders([]string{"date"}),
			WithLogger(quietLogger()),
		)
		result, err := e.Crawl(context.Background(), "https://example.com/")
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}

		if _, ok := result.Headers["Date"]; ok {
			t.Error("Headers contains excluded name Date")
		}
		if result.Headers["Server"] != "nginx" {
			t.Errorf("Headers[Server] = %q, want nginx", result.Headers["Server"])
		}
	})

	t.Run("pattern filter prunes the frontier", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{
			"https://example.com/": {
				links: []string{"/docs/intro", "/admin/users"},
			},
			"https://example.com/docs/intro":  {},
			"https://example.com/admin/users": {},
		})

		e := NewEngine(site,
			WithPatternFilter(NewPatternFilter([]string{"/admin/*"}, nil)),
			WithLogger(quietLogger()),
		)
		result, err := e.Crawl(context.Background(), "https://example.com/")
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}

		want := []string{"https://example.com/", "https://example.com/docs/intro"}
		if !reflect.DeepEqual(result.URLs, want) {
			t.Errorf("Crawl() URLs = %v, want %v", result.URLs, want)
		}
		if got := site.hitCount("https://example.com/admin/users"); got != 0 {
			t.Errorf("ignored page fetched %d times, want 0", got)
		}
	})

	t.Run("invalid seed fails fast", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(newFakeSite(nil), WithLogger(quietLogger()))
		for _, seed := range []string{"", "ftp://example.com/", "not a url at all ://"} {
			if _, err := e.Crawl(context.Background(), seed); !errors.Is(err, ErrInvalidSeed) {
				t.Errorf("Crawl(%q) error = %v, want ErrInvalidSeed", seed, err)
			}
		}
	})

	t.Run("nil fetcher is rejected", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(nil, WithLogger(quietLogger()))
		if _, err := e.Crawl(context.Background(), "https://example.com/"); !errors.Is(err, ErrNoFetcher) {
			t.Errorf("Crawl() error = %v, want ErrNoFetcher", err)
		}
	})

	t.Run("cancellation returns a partial result and the context error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		var fetches atomic.Int64
		fetcher := FetcherFunc(func(_ context.Context, pageURL string) (*FetchResult, error) {
			if fetches.Add(1) == 2 {
				cancel()
			}
			// Endless site: every page links to two fresh ones.
			return &FetchResult{
				Links: []string{pageURL + "x", pageURL + "y"},
			}, nil
		})

		e := NewEngine(fetcher, WithConcurrency(1), WithLogger(quietLogger()))
		result, err := e.Crawl(ctx, "https://example.com/")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Crawl() error = %v, want context.Canceled", err)
		}
		if result == nil || len(result.URLs) == 0 {
			t.Error("Crawl() returned no partial result after cancellation")
		}
	})

	t.Run("single worker yields breadth-first order", func(t *testing.T) {
		t.Parallel()

		var order []string
		var mu sync.Mutex
		pages := map[string][]string{
			"https://example.com/":  {"/a", "/b"},
			"https://example.com/a": {"/a1"},
			"https://example.com/b": {"/b1"},
		}
		fetcher := FetcherFunc(func(_ context.Context, pageURL string) (*FetchResult, error) {
			mu.Lock()
			order = append(order, pageURL)
			mu.Unlock()
			return &FetchResult{Links: pages[pageURL]}, nil
		})

		e := NewEngine(fetcher, WithConcurrency(1), WithLogger(quietLogger()))
		if _, err := e.Crawl(context.Background(), "https://example.com/"); err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}

		want := []string{
			"https://example.com/",
			"https://example.com/a",
			"https://example.com/b",
			"https://example.com/a1",
			"https://example.com/b1",
		}
		if !reflect.DeepEqual(order, want) {
			t.Errorf("fetch order = %v, want %v", order, want)
		}
	})
}

var _ Fetcher = (*fakeSite)(nil)
