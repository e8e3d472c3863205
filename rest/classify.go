package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/warriorzz/kord/ratelimit"
)

// Rate limit headers as disclosed by the Discord API.
const (
	headerBucket     = "X-RateLimit-Bucket"
	headerLimit      = "X-RateLimit-Limit"
	headerRemaining  = "X-RateLimit-Remaining"
	headerReset      = "X-RateLimit-Reset"
	headerResetAfter = "X-RateLimit-Reset-After"
	headerGlobal     = "X-RateLimit-Global"
	headerRetryAfter = "Retry-After"
)

// rateLimitBody is the JSON payload of a 429 response. It duplicates the
// header signals and is consulted when headers are incomplete.
type rateLimitBody struct {
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after"`
	Global     bool    `json:"global"`
}

// classify maps a response's status and rate limit headers onto the outcome
// reported back to the limiter. now anchors relative reset headers.
func classify(status int, h http.Header, body []byte, now time.Time) ratelimit.Outcome {
	out := ratelimit.Outcome{
		BucketKey: h.Get(headerBucket),
		Limit:     parseCounters(h),
		Reset:     parseReset(h, now),
	}

	switch {
	case status == http.StatusTooManyRequests:
		var rl rateLimitBody
		_ = json.Unmarshal(body, &rl)

		if rl.Global || h.Get(headerGlobal) == "true" {
			out.Kind = ratelimit.OutcomeGlobalLimited
		} else {
			out.Kind = ratelimit.OutcomeBucketLimited
		}
		if out.Reset.IsZero() && rl.RetryAfter > 0 {
			out.Reset = now.Add(secondsToDuration(rl.RetryAfter))
		}

	case status >= 200 && status < 400:
		out.Kind = ratelimit.OutcomeAccepted

	default:
		out.Kind = ratelimit.OutcomeError
	}

	// A bucket-scoped rejection without a bucket key cannot be attributed;
	// record whatever counters were disclosed without gating anything.
	if out.Kind == ratelimit.OutcomeBucketLimited && out.BucketKey == "" {
		out.Kind = ratelimit.OutcomeError
	}

	return out
}

// parseCounters extracts the capacity pair, nil when either header is absent
// or malformed.
func parseCounters(h http.Header) *ratelimit.RateLimit {
	total, err := strconv.Atoi(h.Get(headerLimit))
	if err != nil {
		return nil
	}
	remaining, err := strconv.Atoi(h.Get(headerRemaining))
	if err != nil {
		return nil
	}
	return &ratelimit.RateLimit{Total: total, Remaining: remaining}
}

// parseReset resolves the replenish instant. Reset-After is preferred: it is
// immune to clock skew between client and server. Falls back to the absolute
// epoch header, then to Retry-After.
func parseReset(h http.Header, now time.Time) time.Time {
	if v := h.Get(headerResetAfter); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return now.Add(secondsToDuration(secs))
		}
	}
	if v := h.Get(headerReset); v != "" {
		if epoch, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Unix(0, int64(epoch*float64(time.Second)))
		}
	}
	if v := h.Get(headerRetryAfter); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return now.Add(secondsToDuration(secs))
		}
	}
	return time.Time{}
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
