package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/nightcrawler/internal/model"
)

// MarkdownWriter outputs crawl results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// seed is the crawl's starting URL, shown in the header when set.
	seed string
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownSeed sets the seed URL shown in the report header.
func WithMarkdownSeed(seed string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.seed = seed
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeURLs(md, result)
	w.writeHeaders(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl statistics.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Nightcrawler Report")
	md.PlainText("")

	rows := [][]string{
		{"Pages Fetched", strconv.Itoa(result.Stats.PagesFetched)},
		{"Pages Failed", strconv.Itoa(result.Stats.PagesFailed)},
		{"URLs Seen", strconv.Itoa(result.Stats.URLsSeen)},
		{"Unique Headers", strconv.Itoa(len(result.Headers))},
	}
	if w.seed != "" {
		rows = append([][]string{{"Seed URL", "`" + w.seed + "`"}}, rows...)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if result.Stats.PagesFailed > 0 {
		w.writeFetchChart(md, result)
		md.Warning("Some pages failed to fetch; the URL and header lists are partial.")
		md.PlainText("")
	}
}

// writeFetchChart writes a mermaid pie chart of fetch outcomes.
func (w *MarkdownWriter) writeFetchChart(md *markdown.Markdown, result *model.CrawlResult) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Outcomes"),
		piechart.WithShowData(true),
	)

	if result.Stats.PagesFetched > 0 {
		chart.LabelAndIntValue("Fetched", uint64(result.Stats.PagesFetched))
	}
	if result.Stats.PagesFailed > 0 {
		chart.LabelAndIntValue("Failed", uint64(result.Stats.PagesFailed))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeURLs writes the discovered URL list.
func (w *MarkdownWriter) writeURLs(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Discovered URLs (" + strconv.Itoa(len(result.URLs)) + ")")
	md.PlainText("")

	if len(result.URLs) == 0 {
		md.PlainText("No URLs discovered.")
		md.PlainText("")
		return
	}

	items := make([]string, 0, len(result.URLs))
	for _, u := range result.URLs {
		items = append(items, "`"+u+"`")
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeHeaders writes the aggregated header table, sorted by name.
func (w *MarkdownWriter) writeHeaders(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Observed Response Headers (" + strconv.Itoa(len(result.Headers)) + ")")
	md.PlainText("")

	if len(result.Headers) == 0 {
		md.PlainText("No headers observed.")
		md.PlainText("")
		return
	}

	names := make([]string, 0, len(result.Headers))
	for name := range result.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{"`" + name + "`", result.Headers[name]})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Header", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [nightcrawler](https://github.com/nao1215/nightcrawler)*")
}

var _ Writer = (*MarkdownWriter)(nil)
