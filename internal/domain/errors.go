package domain

import (
	"errors"
	"fmt"
)

// Upstream and collaborator failures. Only ErrUpstreamUnavailable ever
// reaches an API caller; the rest are absorbed by the stale-cache fallback
// or the summarizer placeholder.
var (
	ErrUpstreamTimeout     = errors.New("upstream request timed out")
	ErrUpstreamMalformed   = errors.New("upstream payload malformed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable and no cached events")
	ErrSummarizerFailure   = errors.New("summarizer failed")
)

// UpstreamHTTPError reports a non-2xx response from the feed.
type UpstreamHTTPError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamHTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}
