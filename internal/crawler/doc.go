// Package crawler implements the concurrent crawl engine.
//
// # Architecture
//
// The package is designed around the Engine type, which coordinates a fixed
// pool of workers over shared crawl state:
//
//   - Frontier: FIFO queue of pending URLs plus the seen-set that guarantees
//     each normalized URL is scheduled at most once
//   - HeaderSet: accumulator of unique response headers (first value wins)
//   - Budget: atomic counter bounding the total number of fetches
//   - Normalizer: canonicalizes discovered links and classifies them as
//     in-scope, out-of-scope, or not crawlable
//
// Design decision: We implement our own frontier and scheduler rather than
// using a third-party crawling library because:
//  1. The fetch side is a headless browser, not a plain HTTP client, so
//     off-the-shelf crawlers' transport assumptions do not apply
//  2. Drain detection (queue empty AND no worker in flight) needs to be
//     exact, or the crawl terminates while links are still being discovered
//  3. The first-wins header aggregate requires tight control of when
//     recording happens relative to dispatch
//
// # Concurrency
//
// Workers run under an errgroup with fixed size. All shared mutation goes
// through the Frontier, HeaderSet, and Budget, each guarded independently;
// no lock is ever held across a fetch call. FIFO dequeue gives an
// approximately breadth-first crawl shape, though strict BFS layering is not
// guaranteed while multiple workers interleave.
//
// # Termination
//
// The crawl ends when the frontier drains (pending empty and no fetch in
// flight) or the request budget reaches zero. Budget exhaustion is a normal
// termination condition, not an error; fetches already in flight complete
// and their headers are recorded.
//
// # Usage
//
//	engine := crawler.NewEngine(fetcher, crawler.WithConcurrency(5))
//	result, err := engine.Crawl(ctx, "https://example.com/")
package crawler
