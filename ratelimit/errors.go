package ratelimit

import "errors"

var (
	// ErrAlreadyCompleted is returned when a token is completed a second time.
	ErrAlreadyCompleted = errors.New("ratelimit: token already completed")

	// ErrNotCompleted is returned by Consume when its body returned without
	// ever completing the token.
	ErrNotCompleted = errors.New("ratelimit: token was never completed")

	// ErrMissingBucketKey is returned when a bucket-scoped rate limit outcome
	// does not name the bucket it applies to.
	ErrMissingBucketKey = errors.New("ratelimit: bucket rate limit outcome without bucket key")
)
