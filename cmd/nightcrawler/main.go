// Package main provides the entry point for the nightcrawler CLI.
//
// Nightcrawler is a reconnaissance crawler for a single website. It renders
// pages in a headless browser, maps every URL reachable from a seed, and
// aggregates the distinct HTTP response headers the site serves.
//
// Usage:
//
//	nightcrawler crawl https://example.com
//	nightcrawler history
//
// See --help for all available options.
package main

// main is the entry point for nightcrawler.
func main() {
	Execute()
}
