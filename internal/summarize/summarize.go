// Package summarize turns aggregate reports and single events into short
// natural-language analyses through an external text-completion service.
// The service is best-effort: every failure degrades to Placeholder.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/natural-events-service/internal/domain"
	"github.com/couchcryptid/natural-events-service/internal/observability"
)

const (
	// Placeholder is returned whenever the summarizer cannot produce text.
	Placeholder = "AI analysis is temporarily unavailable. Please try again shortly."
	// NoEvents is returned for an empty report without calling the summarizer.
	NoEvents = "No active natural events to summarize."

	// DefaultTimeout bounds a single summarizer call.
	DefaultTimeout = 20 * time.Second
)

// Summarizer completes a free-text payload into an analysis.
type Summarizer interface {
	Summarize(ctx context.Context, payload string) (string, error)
}

// Options configures a Service.
type Options struct {
	Timeout time.Duration
	// Rate is the sustained number of summarizer calls per second. Zero disables limiting.
	Rate float64
}

// Service wraps a Summarizer with a timeout, a rate limit, and placeholder
// fallback. A nil Summarizer means the feature is disabled.
type Service struct {
	summarizer Summarizer
	timeout    time.Duration
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewService creates a Service. s may be nil.
func NewService(s Summarizer, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Service {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if opts.Rate > 0 {
		burst := max(1, int(math.Ceil(opts.Rate)))
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}

	return &Service{
		summarizer: s,
		timeout:    timeout,
		limiter:    limiter,
		metrics:    metrics,
		logger:     logger,
	}
}

// Enabled reports whether a summarizer is configured.
func (s *Service) Enabled() bool {
	return s.summarizer != nil
}

// SummarizeReport returns an analysis of the report's summary text.
func (s *Service) SummarizeReport(ctx context.Context, report domain.AggregateReport) string {
	text := domain.SummaryText(report)
	if text == "" {
		return NoEvents
	}
	return s.run(ctx, "report", text)
}

// AnalyzeEvent returns an analysis of a single event from its title and category.
func (s *Service) AnalyzeEvent(ctx context.Context, ev domain.ClassifiedEvent) string {
	return s.run(ctx, "event", EventPayload(ev))
}

// EventPayload renders the single-event summarizer payload.
func EventPayload(ev domain.ClassifiedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\nCategory: %s", ev.Title, ev.Category)
	if ev.Region != "" {
		fmt.Fprintf(&b, "\nRegion: %s", ev.Region)
	}
	return b.String()
}

func (s *Service) run(ctx context.Context, kind, payload string) string {
	if s.summarizer == nil {
		s.metrics.SummarizerRequests.WithLabelValues("disabled").Inc()
		return Placeholder
	}
	if s.limiter != nil && !s.limiter.Allow() {
		s.metrics.SummarizerRequests.WithLabelValues("rate_limited").Inc()
		s.logger.Warn("summarizer rate limited", "kind", kind)
		return Placeholder
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.summarizer.Summarize(ctx, payload)
	s.metrics.SummarizerDuration.Observe(time.Since(start).Seconds())

	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty completion")
	}
	if err != nil {
		s.metrics.SummarizerRequests.WithLabelValues("error").Inc()
		s.logger.Warn("summarizer failed, using placeholder", "kind", kind,
			"error", fmt.Errorf("%w: %w", domain.ErrSummarizerFailure, err))
		return Placeholder
	}

	s.metrics.SummarizerRequests.WithLabelValues("success").Inc()
	return strings.TrimSpace(text)
}
