// Package model defines the core data structures used throughout nightcrawler.
//
// This package contains the following main types:
//   - CrawlResult: The final snapshot of a finished crawl (URLs + headers)
//   - CrawlStats: Counters describing how the crawl went
//   - RunRecord: A persisted crawl run loaded from the history database
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, report, database) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
