package connectors

import "fmt"

// RateLimitError is returned when FMP answers 429. It is deliberately a
// distinct type so callers can back off instead of treating it like a
// generic transient failure; the client never retries it internally.
type RateLimitError struct {
	Endpoint string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("fmp rate limit exceeded on %s", e.Endpoint)
}

// APIError covers non-2xx FMP responses that are not rate limits.
// Client errors (4xx) are not retried.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fmp request to %s failed with status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}
