package renderer

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind is a coarse classification of a fetch failure.
type Kind int

const (
	// KindNetwork covers connection failures: DNS, refused connections,
	// resets, TLS problems.
	KindNetwork Kind = iota

	// KindTimeout means the per-page deadline expired before the page
	// finished loading.
	KindTimeout

	// KindRender covers failures inside the browser or parser after the
	// network layer succeeded: script evaluation errors, malformed
	// documents, protocol errors.
	KindRender
)

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

// FetchError describes a failed page fetch. It wraps the underlying error
// so callers can still use errors.Is/As on the cause.
type FetchError struct {
	// Kind classifies the failure.
	Kind Kind

	// URL is the page that failed.
	URL string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// wrapFetchError classifies err and wraps it with the page URL. A nil err
// returns nil.
func wrapFetchError(pageURL string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Kind: classify(err), URL: pageURL, Err: err}
}

// classify maps an underlying error to a Kind.
func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindNetwork
	}
	return KindRender
}
