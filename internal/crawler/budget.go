package crawler

import "sync/atomic"

// Budget bounds the total number of fetches in one crawl. It is shared by
// all workers; each fetch dispatch first acquires a slot. The counter never
// goes negative, and once it hits zero no new fetch is dispatched; fetches
// already in flight are allowed to complete.
type Budget struct {
	// unlimited disables accounting entirely. A crawl without a request
	// cap can run indefinitely on large or cyclic sites; callers are
	// expected to know their target.
	unlimited bool

	remaining atomic.Int64
}

// NewBudget creates a Budget permitting max fetches. A max of zero or less
// means unlimited.
func NewBudget(max int) *Budget {
	b := &Budget{}
	if max <= 0 {
		b.unlimited = true
		return b
	}
	b.remaining.Store(int64(max))
	return b
}

// Acquire claims one fetch slot. It reports false once the budget is
// exhausted, without ever letting the counter go negative.
func (b *Budget) Acquire() bool {
	if b.unlimited {
		return true
	}
	for {
		current := b.remaining.Load()
		if current <= 0 {
			return false
		}
		if b.remaining.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

// Unlimited reports whether this budget has no request cap.
func (b *Budget) Unlimited() bool {
	return b.unlimited
}

// Remaining returns the number of fetch slots left. Zero for an exhausted
// budget; meaningless for an unlimited one.
func (b *Budget) Remaining() int64 {
	return b.remaining.Load()
}
