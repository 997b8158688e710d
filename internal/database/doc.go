// Package database provides SQLite-based persistence for crawl runs.
//
// Each completed crawl can be saved as a run: the seed URL, timing, fetch
// counters, and the full result (URL list plus aggregated headers) as JSON.
// The history makes it possible to compare how a site's header surface
// changes over time.
//
// The database lives in the XDG data directory by default and uses the
// pure-Go modernc.org/sqlite driver, so no cgo or system SQLite is needed.
package database
