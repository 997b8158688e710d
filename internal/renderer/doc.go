// Package renderer provides page fetchers for the crawl engine.
//
// Two implementations are available:
//
//   - Chrome drives a headless Chrome browser through chromedp. Pages are
//     fully rendered: scripts execute, late DOM mutations are captured, and
//     the response headers observed are those the browser received for the
//     document itself. This is the default fetcher.
//
//   - Plain performs a bare HTTP GET and parses the static HTML. It misses
//     links injected by JavaScript but needs no browser binary, which makes
//     it useful for restricted environments and for fast scans of
//     server-rendered sites.
//
// Both satisfy the crawler.Fetcher interface. Fetch failures are reported
// as *FetchError values carrying a coarse classification (timeout, network,
// render) so callers can distinguish a slow site from a broken one.
package renderer
