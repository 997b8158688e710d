package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultConcurrency is the number of concurrent page fetches. Headless
	// browser tabs are cheap but not free; five keeps memory use modest
	// while saturating most sites' response times.
	DefaultConcurrency = 5

	// DefaultMaxRequests of 0 means no cap on the total number of pages
	// fetched. The crawl is then bounded only by the site's URL surface,
	// which for generated or cyclic sites can be effectively infinite.
	// Users crawling unknown sites should set --max-requests.
	DefaultMaxRequests = 0

	// DefaultFetchTimeout is generous because a rendered fetch includes
	// script execution and a settle delay on top of the network transfer.
	DefaultFetchTimeout = 60 * time.Second

	// DefaultSettleDelay is how long to wait after scrolling a rendered
	// page to the bottom, giving lazy-loaded content time to appear.
	DefaultSettleDelay = 2 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "nightcrawler"
)

// DefaultExcludedHeaders lists response header names dropped from the
// aggregate by default. These vary per response or per object (timestamps,
// validators, sizes) and would make the aggregated header map noise rather
// than a fingerprint of the site.
func DefaultExcludedHeaders() []string {
	return []string{
		"content-length",
		"age",
		"date",
		"etag",
		"last-modified",
		"expires",
		"keep-alive",
	}
}

// Config holds all configuration options for nightcrawler.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Seed is the URL the crawl starts from. Must be an absolute http(s)
	// URL; its host defines the crawl scope.
	Seed string

	// Concurrency is the number of crawl workers fetching pages in parallel.
	Concurrency int

	// MaxRequests caps the total number of page fetches. 0 means unbounded.
	MaxRequests int

	// FetchTimeout is the per-page deadline, covering navigation,
	// rendering, and link extraction.
	FetchTimeout time.Duration

	// SettleDelay is the post-scroll wait on rendered pages.
	SettleDelay time.Duration

	// ExcludedHeaders are response header names never recorded in the
	// aggregate. Matched case-insensitively.
	ExcludedHeaders []string

	// IgnorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/admin/*", "*.html").
	IgnorePatterns []string

	// FollowPatterns are URL path patterns to follow during crawling.
	// If set, only URLs matching at least one pattern are crawled.
	FollowPatterns []string

	// UserAgents is the rotation pool for the User-Agent header. Empty
	// means the built-in pool.
	UserAgents []string

	// NoRender disables the headless browser and uses plain HTTP fetches.
	// Faster and dependency-free, but blind to JavaScript-injected links.
	NoRender bool

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// Silent suppresses everything except errors and the final output.
	Silent bool

	// JSONReport enables JSON output instead of the human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output instead of the human-readable
	// format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// OutputFile is the path the report is written to. Empty means stdout.
	OutputFile string

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .nightcrawler in the current directory and then in
	// the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory for the SQLite crawl-history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to record the crawl in the history
	// database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout,
// concurrency). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Concurrency:     DefaultConcurrency,
		MaxRequests:     DefaultMaxRequests,
		FetchTimeout:    DefaultFetchTimeout,
		SettleDelay:     DefaultSettleDelay,
		ExcludedHeaders: DefaultExcludedHeaders(),
		SaveToDB:        true,
	}
}

// XDGDataDir returns the XDG data directory for nightcrawler.
// On Linux: ~/.local/share/nightcrawler
// On macOS: ~/Library/Application Support/nightcrawler
// On Windows: %LOCALAPPDATA%\nightcrawler
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for nightcrawler.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
// The first error found is returned rather than collecting all errors,
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.Seed == "" {
		return ErrNoSeed
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRequests < 0 {
		return ErrInvalidMaxRequests
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.Verbose && c.Silent {
		return ErrConflictingVerbosity
	}
	return nil
}
