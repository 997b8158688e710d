package crawler

import (
	"net/http"
	"sync"
)

// HeaderSet accumulates the unique response headers observed across all
// fetched pages. Header names are compared case-insensitively and stored
// under their canonical form (as in net/http, e.g. "Content-Type").
//
// Conflict policy: first value wins. Once a header name is present, later
// values for the same name are discarded. The result is deterministic given
// a dispatch order, but the dispatch order itself depends on worker
// scheduling; callers needing full value distributions should not use this
// type. The policy is fixed; there is no last-wins mode.
type HeaderSet struct {
	mu       sync.Mutex
	values   map[string]string
	excluded map[string]struct{}
}

// NewHeaderSet creates a HeaderSet with the given excluded header names.
// Excluded names (matched case-insensitively) are never recorded; use it to
// drop volatile headers like Date or Set-Cookie from the aggregate. A nil
// or empty exclusion list records everything.
func NewHeaderSet(excluded []string) *HeaderSet {
	ex := make(map[string]struct{}, len(excluded))
	for _, name := range excluded {
		ex[http.CanonicalHeaderKey(name)] = struct{}{}
	}
	return &HeaderSet{
		values:   make(map[string]string),
		excluded: ex,
	}
}

// Record merges one page's response headers into the aggregate under the
// first-wins policy. Safe for concurrent use.
func (h *HeaderSet) Record(headers map[string]string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for name, value := range headers {
		canonical := http.CanonicalHeaderKey(name)
		if _, ok := h.excluded[canonical]; ok {
			continue
		}
		if _, ok := h.values[canonical]; ok {
			continue
		}
		h.values[canonical] = value
	}
}

// Snapshot returns a copy of the current aggregate.
func (h *HeaderSet) Snapshot() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]string, len(h.values))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}

// Len returns the number of distinct header names recorded so far.
func (h *HeaderSet) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.values)
}
