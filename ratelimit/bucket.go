package ratelimit

import (
	"sync"
	"time"
)

// bucket is the shared state for one server-assigned rate limit bucket.
// Each bucket has its own mutex so unrelated buckets never block each other.
// Buckets live for the lifetime of the limiter once discovered.
type bucket struct {
	key string

	mu        sync.Mutex
	limited   bool // the server has disclosed counters for this bucket
	total     int
	remaining int
	reset     time.Time
	wake      chan struct{} // closed and replaced on every state change
}

func newBucket(key string) *bucket {
	return &bucket{key: key, wake: make(chan struct{})}
}

// tryAdmit reserves one unit of capacity if the bucket allows it. When the
// bucket is exhausted it returns the wake channel and the reset instant the
// caller should wait on. The reservation is optimistic: the next completion
// overwrites it with the server's authoritative counters.
//
// An exhausted bucket with no known reset instant admits anyway. There is no
// time a waiter could be told to wait until, and blocking indefinitely on a
// limit the server did not date is worse than letting the next response
// disclose the real window.
func (b *bucket) tryAdmit(now time.Time) (admitted bool, wake <-chan struct{}, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.limited {
		return true, nil, time.Time{}
	}

	// Lazy Exhausted -> Open transition once the reset instant has passed.
	// The reset is cleared so concurrent callers do not each replenish; the
	// next completion discloses the new window.
	if !b.reset.IsZero() && !now.Before(b.reset) {
		b.remaining = b.total
		b.reset = time.Time{}
	}

	if b.remaining == 0 && !b.reset.IsZero() && now.Before(b.reset) {
		return false, b.wake, b.reset
	}

	if b.remaining > 0 {
		b.remaining--
	}
	return true, nil, time.Time{}
}

// apply overwrites the bucket's counters with the values a completion
// disclosed. Absent fields leave the current state untouched. remaining is
// clamped into [0, total].
func (b *bucket) apply(limit *RateLimit, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit != nil {
		b.limited = true
		b.total = max(limit.Total, 0)
		b.remaining = min(max(limit.Remaining, 0), b.total)
	}
	if !reset.IsZero() {
		b.reset = reset
	}
	b.broadcast()
}

// exhaust marks the bucket empty until reset, regardless of local bookkeeping.
func (b *bucket) exhaust(limit *RateLimit, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.limited = true
	if limit != nil {
		b.total = max(limit.Total, 0)
	}
	b.remaining = 0
	if !reset.IsZero() {
		b.reset = reset
	}
	b.broadcast()
}

// broadcast wakes every caller waiting on this bucket so they re-evaluate.
// Must be called with b.mu held.
func (b *bucket) broadcast() {
	close(b.wake)
	b.wake = make(chan struct{})
}

// snapshot returns the current counters for logging and tests.
func (b *bucket) snapshot() (limited bool, total, remaining int, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.limited, b.total, b.remaining, b.reset
}
