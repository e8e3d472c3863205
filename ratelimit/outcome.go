package ratelimit

import "time"

// OutcomeKind classifies the rate limit signal carried by a response.
type OutcomeKind int

const (
	// OutcomeAccepted is any response that was not a rate limit rejection.
	// It may still disclose the bucket key and current counters.
	OutcomeAccepted OutcomeKind = iota

	// OutcomeBucketLimited is a rejection scoped to a single bucket. The
	// bucket key is mandatory for this kind.
	OutcomeBucketLimited

	// OutcomeGlobalLimited is a rejection that applies across all buckets.
	OutcomeGlobalLimited

	// OutcomeError is a failed call whose error is not this package's
	// concern. Any counters it discloses are still recorded.
	OutcomeError
)

// String returns the kind's label as used in logs and metrics.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeBucketLimited:
		return "bucket_limited"
	case OutcomeGlobalLimited:
		return "global_limited"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// RateLimit is the capacity pair disclosed by the server for one bucket.
type RateLimit struct {
	// Total is the bucket's full capacity per window.
	Total int
	// Remaining is how many calls are left in the current window.
	Remaining int
}

// Outcome reports the rate limit signals of one completed call back to the
// limiter. The transport layer builds it from response status and headers;
// the limiter never inspects response payloads beyond this.
type Outcome struct {
	Kind OutcomeKind

	// BucketKey is the server-assigned bucket identity, empty when the
	// response did not name one. Required for OutcomeBucketLimited.
	BucketKey string

	// Limit carries the disclosed counters, nil when the response had none.
	Limit *RateLimit

	// Reset is the instant at which the bucket (or the global gate)
	// replenishes. Zero when the response did not disclose it.
	Reset time.Time
}
