package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nao1215/nightcrawler/internal/model"
)

// SimpleWriter outputs human-readable text results.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// seed is the crawl's starting URL, shown in the header when set.
	seed string

	// verbose includes the full URL list; otherwise only counts are shown
	// when the list is long.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithSeed sets the seed URL shown in the report header.
func WithSeed(seed string) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.seed = seed
	}
}

// WithVerbose forces the full URL list even when it is long.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// maxURLsCompact is the URL count above which the non-verbose writer
// truncates the list.
const maxURLsCompact = 50

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl result in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeURLs(&sb, result)
	w.writeHeaders(&sb, result)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl statistics.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       NIGHTCRAWLER RESULTS\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if w.seed != "" {
		fmt.Fprintf(sb, "Seed URL:       %s\n", w.seed)
	}
	fmt.Fprintf(sb, "Pages Fetched:  %d\n", result.Stats.PagesFetched)
	if result.Stats.PagesFailed > 0 {
		fmt.Fprintf(sb, "Pages Failed:   %d\n", result.Stats.PagesFailed)
	}
	fmt.Fprintf(sb, "URLs Seen:      %d\n", result.Stats.URLsSeen)
	fmt.Fprintf(sb, "Unique Headers: %d\n", len(result.Headers))
	sb.WriteString("\n")
}

// writeURLs writes the discovered URL list.
func (w *SimpleWriter) writeURLs(sb *strings.Builder, result *model.CrawlResult) {
	fmt.Fprintf(sb, "Discovered URLs (%d)\n", len(result.URLs))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	urls := result.URLs
	truncated := 0
	if !w.verbose && len(urls) > maxURLsCompact {
		truncated = len(urls) - maxURLsCompact
		urls = urls[:maxURLsCompact]
	}

	for _, u := range urls {
		sb.WriteString("  ")
		sb.WriteString(u)
		sb.WriteString("\n")
	}
	if truncated > 0 {
		fmt.Fprintf(sb, "  ... and %d more (use --verbose for the full list)\n", truncated)
	}
	sb.WriteString("\n")
}

// writeHeaders writes the aggregated header table, sorted by name.
func (w *SimpleWriter) writeHeaders(sb *strings.Builder, result *model.CrawlResult) {
	fmt.Fprintf(sb, "Observed Response Headers (%d)\n", len(result.Headers))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	names := make([]string, 0, len(result.Headers))
	for name := range result.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(sb, "  %-30s %s\n", name+":", result.Headers[name])
	}
	sb.WriteString("\n")
}

var _ Writer = (*SimpleWriter)(nil)
