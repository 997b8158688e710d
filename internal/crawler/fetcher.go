package crawler

import "context"

// Fetcher loads a single page and reports what the engine needs from it:
// the outbound links found in the rendered document and the response
// headers for that URL.
//
// Design decision: The interface lives here, in the consuming package,
// rather than in the renderer package. The engine only cares about this one
// method; the renderer package provides the headless-browser and plain-HTTP
// implementations.
//
// Implementations must not return partial results: a page whose rendering
// could not complete (timeout, navigation failure) is an error, never a
// FetchResult with whatever links happened to be extracted. They own their
// per-fetch timeout so a hung page cannot block a worker indefinitely.
type Fetcher interface {
	// FetchPage fetches pageURL and returns its links and headers, or a
	// typed fetch error. The context bounds the whole fetch.
	FetchPage(ctx context.Context, pageURL string) (*FetchResult, error)
}

// FetchResult is the per-URL outcome of a successful fetch. It is consumed
// immediately by the worker that requested it and not retained.
type FetchResult struct {
	// Links are the outbound links discovered in the rendered document,
	// raw as found, not yet normalized or scope-filtered.
	Links []string

	// Headers are the response headers for the fetched document, one
	// value per name.
	Headers map[string]string
}

// FetcherFunc adapts a function to the Fetcher interface. Used mainly by
// tests.
type FetcherFunc func(ctx context.Context, pageURL string) (*FetchResult, error)

// FetchPage calls fn.
func (fn FetcherFunc) FetchPage(ctx context.Context, pageURL string) (*FetchResult, error) {
	return fn(ctx, pageURL)
}
