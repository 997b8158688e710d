package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeed is returned when no seed URL is given on the command line.
	ErrNoSeed = errors.New("no seed URL specified: provide a starting http(s) URL")

	// ErrInvalidConcurrency is returned when the worker count is not positive.
	// Zero workers would mean no crawling at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when the per-page timeout is not positive.
	// A timeout of zero or negative would cause immediate fetch failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxRequests is returned when the request cap is negative.
	// Use 0 for an unbounded crawl.
	ErrInvalidMaxRequests = errors.New("invalid max requests: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingVerbosity is returned when both --verbose and --silent
	// are specified.
	ErrConflictingVerbosity = errors.New("conflicting verbosity: --verbose and --silent cannot be used together")
)
