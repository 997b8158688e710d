package model

import "sort"

// CrawlResult is the immutable snapshot produced when a crawl finishes.
// Its JSON shape is part of the tool's contract: an object with a "urls"
// array and a "headers" object, consumed by downstream auditing scripts.
//
// Design decision: URLs are sorted before the snapshot is built because raw
// discovery order depends on worker scheduling and is not stable across
// runs. Sorting is a presentation concern, but doing it once here gives
// every output format (JSON, text, Markdown) the same deterministic order.
type CrawlResult struct {
	// URLs is the sorted, deduplicated list of in-scope page URLs that were
	// successfully fetched. Failed fetches never appear here.
	URLs []string `json:"urls"`

	// Headers maps canonical header names to the first value observed for
	// each name across all successfully fetched pages. Names on the
	// exclusion list are never present.
	Headers map[string]string `json:"headers"`

	// Stats summarizes the crawl. Excluded from JSON output because the
	// published shape is urls+headers only; reports that want stats read
	// the field directly.
	Stats CrawlStats `json:"-"`
}

// CrawlStats holds counters describing a finished crawl.
type CrawlStats struct {
	// PagesFetched is the number of successful page fetches.
	PagesFetched int

	// PagesFailed is the number of fetches that ended in a fetch error.
	PagesFailed int

	// URLsSeen is the number of unique normalized URLs that entered the
	// frontier (fetched or not).
	URLsSeen int
}

// NewCrawlResult builds a CrawlResult from the raw crawl state. The URL
// slice is copied and sorted; the header map is copied so later mutation of
// the inputs cannot leak into the snapshot.
func NewCrawlResult(urls []string, headers map[string]string, stats CrawlStats) *CrawlResult {
	sortedURLs := make([]string, len(urls))
	copy(sortedURLs, urls)
	sort.Strings(sortedURLs)

	copied := make(map[string]string, len(headers))
	for k, v := range headers {
		copied[k] = v
	}

	return &CrawlResult{
		URLs:    sortedURLs,
		Headers: copied,
		Stats:   stats,
	}
}
