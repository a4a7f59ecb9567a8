package eonet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/natural-events-service/internal/config"
	"github.com/couchcryptid/natural-events-service/internal/domain"
	"github.com/couchcryptid/natural-events-service/internal/observability"
)

const breakerName = "eonet"

// maxErrorBody bounds how much of a non-2xx response body is kept for the error.
const maxErrorBody = 512

// Options configures the EONET client.
type Options struct {
	URL       string
	Status    string
	Limit     int
	Days      int
	Timeout   time.Duration
	UserAgent string

	// BreakerFailures consecutive failures open the circuit for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// OptionsFromConfig maps service configuration onto client options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		URL:             cfg.EONETURL,
		Status:          cfg.EONETStatus,
		Limit:           cfg.EONETLimit,
		Days:            cfg.EONETDays,
		Timeout:         cfg.EONETTimeout,
		UserAgent:       cfg.EONETUserAgent,
		BreakerFailures: cfg.BreakerFailures,
		BreakerCooldown: cfg.BreakerCooldown,
	}
}

// Client fetches the current event list from the NASA EONET v3 API. Each call
// is a single attempt; an open circuit short-circuits attempts while upstream
// is known to be down.
type Client struct {
	baseURL    string
	query      url.Values
	userAgent  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]domain.RawEvent]
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an EONET client.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	c := &Client{
		baseURL: opts.URL,
		query: url.Values{
			"status": {opts.Status},
			"limit":  {strconv.Itoa(opts.Limit)},
			"days":   {strconv.Itoa(opts.Days)},
		},
		userAgent: opts.UserAgent,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		metrics: metrics,
		logger:  logger,
	}

	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]domain.RawEvent](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			if to == gobreaker.StateOpen {
				metrics.UpstreamBreakerOpen.Set(1)
			} else {
				metrics.UpstreamBreakerOpen.Set(0)
			}
		},
	})

	return c
}

// Fetch retrieves the current event list. Failures are classified into the
// domain error taxonomy: ErrUpstreamTimeout, *UpstreamHTTPError,
// ErrUpstreamMalformed, or a wrapped transport / circuit error.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawEvent, error) {
	start := time.Now()
	events, err := c.breaker.Execute(func() ([]domain.RawEvent, error) {
		return c.doRequest(ctx)
	})
	c.metrics.UpstreamFetchDuration.Observe(time.Since(start).Seconds())
	c.metrics.UpstreamFetches.WithLabelValues(outcome(err)).Inc()

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("eonet request rejected: %w", err)
		}
		return nil, err
	}

	c.logger.Debug("eonet fetch complete", "events", len(events), "duration", time.Since(start))
	return events, nil
}

func (c *Client) doRequest(ctx context.Context) ([]domain.RawEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+c.query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("eonet request: %w: %w", domain.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("eonet request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.UpstreamHTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("read response: %w: %w", domain.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("decode response: %w: %w", domain.ErrUpstreamMalformed, err)
	}
	if payload.Events == nil {
		return nil, fmt.Errorf("decode response: %w: missing events list", domain.ErrUpstreamMalformed)
	}

	return *payload.Events, nil
}

// EONET API response type. A pointer distinguishes a missing or null list
// from an empty one.
type response struct {
	Events *[]domain.RawEvent `json:"events"`
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func outcome(err error) string {
	var httpErr *domain.UpstreamHTTPError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return "timeout"
	case errors.As(err, &httpErr):
		return "http_error"
	case errors.Is(err, domain.ErrUpstreamMalformed):
		return "malformed"
	default:
		return "error"
	}
}
