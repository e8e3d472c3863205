package ratelimit

import "sync"

// Token is the one-shot handle issued on admission. The caller performs its
// outbound call and must resolve the token exactly once with the response's
// outcome. Completing twice, or discarding a token unresolved, is a
// programming error in the integrating transport layer; Consume enforces the
// contract on every exit path.
type Token struct {
	limiter *Limiter
	route   string

	mu        sync.Mutex
	completed bool
}

// Complete reports the call's outcome back into the shared bucket and global
// state. It returns ErrAlreadyCompleted on a second call and
// ErrMissingBucketKey for a bucket-scoped rate limit outcome that does not
// name its bucket.
func (t *Token) Complete(out Outcome) error {
	t.mu.Lock()
	if t.completed {
		t.mu.Unlock()
		return ErrAlreadyCompleted
	}
	t.completed = true
	t.mu.Unlock()

	return t.limiter.complete(t.route, out)
}

// Completed reports whether the token has been resolved.
func (t *Token) Completed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}
