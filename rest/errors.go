package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-success response from the API. Rate limit bookkeeping
// has already been applied by the time it is returned; the error itself
// propagates to the caller untouched.
type APIError struct {
	Status  int    // HTTP status code
	Code    int    // API-specific error code, 0 when absent
	Message string // human-readable message from the response body
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rest: api error %d (code %d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("rest: api error %d", e.Status)
}

// RateLimited reports whether the error was a 429 rejection that already
// gated the limiter. Retrying is the caller's decision.
func (e *APIError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

// apiError decodes the API's error payload, falling back to the bare status
// when the body is not the expected JSON shape.
func apiError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	var payload struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		e.Code = payload.Code
		e.Message = payload.Message
	}
	return e
}
