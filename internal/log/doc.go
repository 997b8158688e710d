// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard slog
// package.
//
// A crawl surfaces raw HTTP response headers, and some of those carry
// secrets: session cookies, API keys, authorization tokens. The
// SecureHandler masks such values before they reach the log output, so a
// verbose crawl log can be shared or attached to a report without leaking
// credentials from the scanned site.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, slog.LevelDebug)
//	logger.Info("header observed",
//	    "set-cookie", "session=abc123",  // masked
//	    "server", "nginx",               // passed through
//	)
//	slog.SetDefault(logger)
//
// Note that "seed" is NOT a sensitive key in this codebase: it names the
// crawl's starting URL and appears in nearly every log line.
package log
