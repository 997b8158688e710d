// Package report renders crawl results in multiple output formats.
//
// Three writers are provided:
//   - JSONWriter for tool integration and programmatic processing
//   - SimpleWriter for human-readable terminal output
//   - MarkdownWriter for documentation and sharing
//
// All writers implement the Writer interface, and MultiWriter fans a result
// out to several of them at once (e.g., terminal and file).
package report
