// Package rest is the HTTP transport for the Discord API. Every call is
// admitted by a ratelimit.Limiter before it is sent, and the response's rate
// limit headers are classified and reported back so future calls are gated
// correctly. The package performs no retries: a 429 that slips through is
// returned to the caller after its reset has been recorded.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/warriorzz/kord/ratelimit"
)

// DefaultBaseURL is the Discord API endpoint, pinned to API version 10.
const DefaultBaseURL = "https://discord.com/api/v10"

const defaultUserAgent = "DiscordBot (https://github.com/warriorzz/kord, 1.0)"

// Config configures a Client. Token is the only required field.
type Config struct {
	// Token is the bot token, sent as "Bot <token>".
	Token string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// UserAgent overrides the DiscordBot user agent string.
	UserAgent string

	// Timeout bounds each individual HTTP request. Zero means no timeout
	// beyond the caller's context.
	Timeout time.Duration

	// HTTPClient overrides the underlying transport.
	HTTPClient *http.Client

	// Limiter is the admission gate shared by all calls. A fresh limiter
	// is created when nil.
	Limiter *ratelimit.Limiter

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Client performs admission-controlled calls against the API. Safe for
// concurrent use.
type Client struct {
	base      string
	token     string
	userAgent string
	http      *http.Client
	limiter   *ratelimit.Limiter
	log       *slog.Logger
	tracer    trace.Tracer
}

// New creates a client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("rest: token is required")
	}

	c := &Client{
		base:      strings.TrimSuffix(cfg.BaseURL, "/"),
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		http:      cfg.HTTPClient,
		limiter:   cfg.Limiter,
		log:       cfg.Logger,
		tracer:    otel.Tracer("kord/rest"),
	}
	if c.base == "" {
		c.base = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	if c.limiter == nil {
		c.limiter = ratelimit.New()
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c, nil
}

// Limiter returns the admission gate the client reports into.
func (c *Client) Limiter() *ratelimit.Limiter {
	return c.limiter
}

// Do performs one call: it awaits admission for the route, sends the request
// with body marshaled as JSON (nil for none), reports the response's rate
// limit signals, and decodes a 2xx payload into out when out is non-nil.
// Non-2xx responses are returned as *APIError; transport failures and
// context cancellation propagate unchanged.
func (c *Client) Do(ctx context.Context, route Route, body, out any) error {
	ctx, span := c.tracer.Start(ctx, route.Method+" "+route.Template,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", route.Method),
			attribute.String("url.template", route.Template),
		),
	)
	defer span.End()

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("rest: marshal request body: %w", err)
		}
		payload = data
	}

	requestID := uuid.New().String()
	start := time.Now()

	var status int
	err := c.limiter.Consume(ctx, &ratelimit.Request{Route: route.Signature()}, func(token *ratelimit.Token) error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, route.Method, c.base+route.Path, reader)
		if err != nil {
			return fmt.Errorf("rest: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bot "+c.token)
		req.Header.Set("User-Agent", c.userAgent)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("rest: read response body: %w", err)
		}

		outcome := classify(resp.StatusCode, resp.Header, data, time.Now())
		if err := token.Complete(outcome); err != nil {
			return err
		}

		status = resp.StatusCode
		c.log.Debug("api call completed",
			"request_id", requestID,
			"route", route.String(),
			"status", resp.StatusCode,
			"outcome", outcome.Kind.String(),
			"bucket", outcome.BucketKey,
			"elapsed", time.Since(start),
		)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return apiError(resp.StatusCode, data)
		}
		if out != nil && len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("rest: decode response body: %w", err)
			}
		}
		return nil
	})

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			span.SetAttributes(attribute.Int("http.response.status_code", apiErr.Status))
			if apiErr.RateLimited() {
				c.log.Warn("request rejected by rate limit",
					"request_id", requestID,
					"route", route.String(),
				)
			}
		}
		return err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	span.SetStatus(codes.Ok, "")
	return nil
}
