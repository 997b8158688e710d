package crawler

import "sync"

// Frontier is the shared crawl queue: pending URLs in FIFO order plus the
// set of every normalized URL ever enqueued. The seen-set check and the
// queue insert happen under one lock, which is the sole dedup guarantee:
// two concurrent EnqueueIfNew calls with the same URL result in exactly one
// successful enqueue.
//
// Drain detection works by counting in-flight URLs: Next hands a URL to a
// worker and increments the count, Finish decrements it. The frontier is
// drained only when the queue is empty AND nothing is in flight, because a
// worker holding a URL may still enqueue more links. Workers block in Next
// rather than polling.
type Frontier struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pending  []string
	seen     map[string]struct{}
	inflight int
	closed   bool
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	f := &Frontier{
		seen: make(map[string]struct{}),
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// EnqueueIfNew atomically checks the seen-set and, if the URL has never been
// enqueued, records it and appends it to the pending queue. It reports
// whether the URL was newly added. Enqueues after Close are dropped: once
// the crawl is shutting down no new work is accepted.
func (f *Frontier) EnqueueIfNew(normalizedURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	if _, ok := f.seen[normalizedURL]; ok {
		return false
	}

	f.seen[normalizedURL] = struct{}{}
	f.pending = append(f.pending, normalizedURL)
	f.cond.Signal()
	return true
}

// Next blocks until a pending URL is available and returns it, marking it in
// flight. It returns false when the frontier is drained (nothing pending and
// nothing in flight) or closed; workers should then exit.
func (f *Frontier) Next() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		if f.closed {
			return "", false
		}
		if len(f.pending) > 0 {
			u := f.pending[0]
			f.pending = f.pending[1:]
			f.inflight++
			return u, true
		}
		if f.inflight == 0 {
			// Nothing queued and nobody who could queue more: drained.
			f.closed = true
			f.cond.Broadcast()
			return "", false
		}
		f.cond.Wait()
	}
}

// Finish marks one in-flight URL as fully processed. The worker must call it
// after all links discovered on that page have been enqueued. When the last
// in-flight URL finishes with the queue empty, the frontier closes and all
// blocked workers wake up.
func (f *Frontier) Finish() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inflight--
	if f.inflight == 0 && len(f.pending) == 0 {
		f.closed = true
	}
	f.cond.Broadcast()
}

// Close shuts the frontier down: pending entries are discarded, blocked
// Next calls return false, and later enqueues are dropped. Used on budget
// exhaustion and context cancellation. Safe to call more than once.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.cond.Broadcast()
}

// SeenCount returns the number of unique URLs ever enqueued.
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
