package crawler

import "errors"

// Engine errors.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances at each call site. This allows callers to use
// errors.Is() for programmatic handling while still providing human-readable
// messages.
var (
	// ErrInvalidSeed is returned when the seed URL is not an absolute
	// http or https URL. The crawl never starts in that case.
	ErrInvalidSeed = errors.New("invalid seed: must be an absolute http(s) URL")

	// ErrNoFetcher is returned when the engine was constructed without a
	// page fetcher. There is nothing to crawl with.
	ErrNoFetcher = errors.New("no fetcher configured")
)
