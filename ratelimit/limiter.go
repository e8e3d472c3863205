// Package ratelimit gates outbound API calls against rate limits the server
// discloses in its responses. Callers ask for admission before sending a
// call and report the response's rate limit signals back through a one-shot
// completion token. The limiter tracks one bucket per server-assigned bucket
// key, learns which route belongs to which bucket lazily, and honors a
// server-wide gate that overrides every bucket when triggered.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Request describes one outbound call to the limiter.
type Request struct {
	// Route is the stable identity of the endpoint plus its major path
	// parameter. Calls sharing a route share bucket state once the server
	// reveals which bucket the route belongs to.
	Route string
}

// MetricsSink receives admission and completion observations. Implementations
// must be safe for concurrent use. A nil sink disables instrumentation.
type MetricsSink interface {
	// ObserveAdmission records how long one caller waited for admission and
	// whether it was admitted or cancelled.
	ObserveAdmission(wait time.Duration, outcome string)

	// ObserveCompletion records the kind of outcome a completed call reported.
	ObserveCompletion(kind string)
}

// Limiter coordinates an unbounded number of concurrent callers against
// shared bucket state. It is a timed gate, not a bounded queue: it never
// rejects, it only delays. The zero value is not usable; construct with New.
type Limiter struct {
	sink     MetricsSink
	log      *slog.Logger
	throttle *rate.Limiter // proactive identity-wide throughput cap, may be nil

	mu      sync.Mutex // guards routes and buckets; never held while waiting
	routes  map[string]string
	buckets map[string]*bucket

	globalMu    sync.Mutex
	globalUntil time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithGlobalThrottle caps the overall request rate before any bucket state is
// consulted. Discord enforces 50 requests per second per identity; setting
// the cap proactively avoids tripping the server-wide limit in the first
// place. A rps of zero or less disables the throttle.
func WithGlobalThrottle(rps float64, burst int) Option {
	return func(l *Limiter) {
		if rps > 0 {
			l.throttle = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

// WithMetricsSink attaches an observation sink to the limiter.
func WithMetricsSink(sink MetricsSink) Option {
	return func(l *Limiter) { l.sink = sink }
}

// WithLogger sets the logger used for admission and completion events.
// Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(l *Limiter) { l.log = log }
}

// New creates an empty limiter. Buckets are discovered from completions.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		routes:  make(map[string]string),
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	return l
}

// Await blocks until the request may proceed, then returns the completion
// token the caller must resolve exactly once with the call's outcome. It
// only fails when ctx is cancelled, and cancellation while waiting leaves
// no shared state modified: capacity is reserved at the moment of admission,
// never before.
func (l *Limiter) Await(ctx context.Context, req *Request) (*Token, error) {
	start := time.Now()
	if l.throttle != nil {
		if err := l.throttle.Wait(ctx); err != nil {
			l.observeAdmission(start, "cancelled")
			return nil, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			l.observeAdmission(start, "cancelled")
			return nil, err
		}

		// The global gate is checked before any bucket; lock order is
		// always global first, bucket second.
		if wait := l.globalDelay(); wait > 0 {
			if err := sleep(ctx, wait, nil); err != nil {
				l.observeAdmission(start, "cancelled")
				return nil, err
			}
			continue
		}

		b := l.bucketFor(req.Route)
		if b == nil {
			// Route never resolved to a bucket: there is no information
			// to justify a delay, so first-time callers admit immediately.
			break
		}

		admitted, wake, reset := b.tryAdmit(time.Now())
		if admitted {
			break
		}

		l.log.Debug("bucket exhausted, waiting",
			"route", req.Route,
			"bucket", b.key,
			"reset", reset,
		)
		// Wake on reset, on a completion changing the bucket, or on ctx.
		// State is re-evaluated on every wake: another caller's response
		// may have extended the reset or freed capacity early.
		if err := sleep(ctx, time.Until(reset), wake); err != nil {
			l.observeAdmission(start, "cancelled")
			return nil, err
		}
	}

	l.observeAdmission(start, "admitted")
	return &Token{limiter: l, route: req.Route}, nil
}

// Consume awaits admission, runs body with the issued token, and guarantees
// exactly one completion on every exit path. The body performs the actual
// call and completes the token with the outcome classified from the
// response. If body fails before a response was reached, Consume completes
// the token with a bare error outcome so the reservation bookkeeping is
// settled. A body that returns successfully without completing is a
// programming error reported as ErrNotCompleted.
func (l *Limiter) Consume(ctx context.Context, req *Request, body func(*Token) error) error {
	token, err := l.Await(ctx, req)
	if err != nil {
		return err
	}

	if err := body(token); err != nil {
		// Ignore ErrAlreadyCompleted: the body may have completed the
		// token before failing, which is fine.
		_ = token.Complete(Outcome{Kind: OutcomeError})
		return err
	}

	if !token.Completed() {
		return ErrNotCompleted
	}
	return nil
}

// complete applies one outcome to the shared state. Called through Token
// exactly once per admitted call.
func (l *Limiter) complete(route string, out Outcome) error {
	switch out.Kind {
	case OutcomeAccepted:
		if out.BucketKey == "" {
			// Nothing disclosed; the local optimistic estimate stands.
			break
		}
		b := l.resolve(route, out.BucketKey)
		b.apply(out.Limit, out.Reset)

	case OutcomeBucketLimited:
		if out.BucketKey == "" {
			return ErrMissingBucketKey
		}
		b := l.resolve(route, out.BucketKey)
		b.exhaust(out.Limit, out.Reset)
		l.log.Warn("bucket rate limit hit",
			"route", route,
			"bucket", out.BucketKey,
			"reset", out.Reset,
		)

	case OutcomeGlobalLimited:
		l.armGlobal(out.Reset)
		if out.BucketKey != "" {
			l.resolve(route, out.BucketKey).apply(out.Limit, time.Time{})
		}
		l.log.Warn("global rate limit hit", "route", route, "reset", out.Reset)

	case OutcomeError:
		// Servers often still disclose current counters on ordinary
		// errors; record them, surface nothing.
		if out.BucketKey != "" {
			l.resolve(route, out.BucketKey).apply(out.Limit, out.Reset)
		}

	default:
		return fmt.Errorf("ratelimit: unknown outcome kind %d", out.Kind)
	}

	if l.sink != nil {
		l.sink.ObserveCompletion(out.Kind.String())
	}
	return nil
}

// bucketFor returns the bucket the route is mapped to, or nil while the
// server has not yet revealed one.
func (l *Limiter) bucketFor(route string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	key, ok := l.routes[route]
	if !ok {
		return nil
	}
	return l.buckets[key]
}

// resolve records the route -> bucket key mapping and returns the bucket,
// creating it on first discovery. The first completion to reveal a key for a
// route wins; a later completion naming a different key does not remap the
// route, but its counters still apply to the bucket it names.
func (l *Limiter) resolve(route, key string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.routes[route]; !ok {
		l.routes[route] = key
	} else if existing != key {
		l.log.Debug("ignoring conflicting bucket mapping",
			"route", route,
			"bucket", existing,
			"conflicting", key,
		)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(key)
		l.buckets[key] = b
	}
	return b
}

// globalDelay returns how long the global gate still blocks all admissions,
// or zero when inactive. Expiry is lazy: the first check past the reset
// clears the gate.
func (l *Limiter) globalDelay() time.Duration {
	l.globalMu.Lock()
	defer l.globalMu.Unlock()
	if l.globalUntil.IsZero() {
		return 0
	}
	d := time.Until(l.globalUntil)
	if d <= 0 {
		l.globalUntil = time.Time{}
		return 0
	}
	return d
}

// armGlobal activates the global gate until reset, keeping the later of the
// two instants if it is already active.
func (l *Limiter) armGlobal(reset time.Time) {
	l.globalMu.Lock()
	defer l.globalMu.Unlock()
	if reset.After(l.globalUntil) {
		l.globalUntil = reset
	}
}

func (l *Limiter) observeAdmission(start time.Time, outcome string) {
	if l.sink != nil {
		l.sink.ObserveAdmission(time.Since(start), outcome)
	}
}

// sleep waits for d to elapse, for wake to close, or for ctx cancellation,
// whichever happens first. Callers treat a wake as a hint and re-check state.
func sleep(ctx context.Context, d time.Duration, wake <-chan struct{}) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	case <-wake:
		return nil
	}
}
