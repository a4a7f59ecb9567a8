package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/natural-events-service/internal/domain"
	"github.com/couchcryptid/natural-events-service/internal/observability"
)

const (
	// DefaultTTL is how long a fetched entry counts as fresh.
	DefaultTTL = 10 * time.Minute
	// DefaultFetchTimeout bounds a single shared upstream fetch.
	DefaultFetchTimeout = 15 * time.Second

	flightKey = "events"
)

// Fetcher retrieves the current upstream event list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.RawEvent, error)
}

// Entry is one successful upstream fetch. Entries are never mutated; a
// refresh swaps in a new one.
type Entry struct {
	Events    []domain.RawEvent
	FetchedAt time.Time
}

// Result is what a reader receives. Stale is set when Events come from an
// entry kept after a failed refresh or when the caller gave up waiting.
type Result struct {
	Events    []domain.RawEvent
	Stale     bool
	FetchedAt time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock overrides the clock used for freshness checks.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

// WithFetchTimeout overrides the bound on a single upstream fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) { c.fetchTimeout = d }
}

// Cache holds the last successful upstream fetch and serves it while fresh.
// Once expired, readers trigger a single shared refresh; on failure they get
// the previous entry marked stale. Get only fails when there has never been a
// successful fetch.
type Cache struct {
	fetcher      Fetcher
	ttl          time.Duration
	fetchTimeout time.Duration
	clock        clockwork.Clock

	entry atomic.Pointer[Entry]
	group singleflight.Group

	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Cache in front of fetcher. A non-positive ttl uses DefaultTTL.
func New(fetcher Fetcher, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		fetcher:      fetcher,
		ttl:          ttl,
		fetchTimeout: DefaultFetchTimeout,
		clock:        clockwork.NewRealClock(),
		metrics:      metrics,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached events, refreshing them first when the entry is
// missing or expired. The refresh is shared by all concurrent callers and is
// not cancelled when an individual caller's context ends.
func (c *Cache) Get(ctx context.Context) (Result, error) {
	if e := c.entry.Load(); e != nil && c.fresh(e) {
		c.metrics.CacheRequests.WithLabelValues("hit").Inc()
		return Result{Events: e.Events, FetchedAt: e.FetchedAt}, nil
	}

	ch := c.group.DoChan(flightKey, func() (any, error) {
		return c.refresh(ctx, false)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return c.fallback(res.Err)
		}
		e := res.Val.(*Entry)
		c.metrics.CacheRequests.WithLabelValues("refresh").Inc()
		return Result{Events: e.Events, FetchedAt: e.FetchedAt}, nil
	case <-ctx.Done():
		if e := c.entry.Load(); e != nil {
			c.metrics.CacheRequests.WithLabelValues("stale").Inc()
			c.logger.Warn("gave up waiting for refresh, serving cached events",
				"error", ctx.Err(), "age", c.clock.Since(e.FetchedAt))
			return Result{Events: e.Events, Stale: true, FetchedAt: e.FetchedAt}, nil
		}
		c.metrics.CacheRequests.WithLabelValues("unavailable").Inc()
		return Result{}, ctx.Err()
	}
}

// Refresh fetches unconditionally, joining any refresh already in flight.
// Unlike Get it reports fetch failures instead of falling back.
func (c *Cache) Refresh(ctx context.Context) (Entry, error) {
	v, err, _ := c.group.Do(flightKey, func() (any, error) {
		return c.refresh(ctx, true)
	})
	if err != nil {
		return Entry{}, err
	}
	return *v.(*Entry), nil
}

// Peek returns the current entry without fetching.
func (c *Cache) Peek() (Entry, bool) {
	e := c.entry.Load()
	if e == nil {
		return Entry{}, false
	}
	return *e, true
}

func (c *Cache) fresh(e *Entry) bool {
	return c.clock.Since(e.FetchedAt) < c.ttl
}

func (c *Cache) refresh(ctx context.Context, force bool) (*Entry, error) {
	// Another flight may have completed between the caller's check and now.
	if e := c.entry.Load(); !force && e != nil && c.fresh(e) {
		return e, nil
	}

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
	defer cancel()

	events, err := c.fetcher.Fetch(fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("refresh events: %w", err)
	}
	if events == nil {
		events = []domain.RawEvent{}
	}

	e := &Entry{Events: events, FetchedAt: c.clock.Now()}
	c.entry.Store(e)

	c.metrics.CacheEvents.Set(float64(len(events)))
	c.metrics.CacheLastRefresh.Set(float64(e.FetchedAt.Unix()))
	c.metrics.BatchSize.Observe(float64(len(events)))
	c.logger.Info("event cache refreshed", "events", len(events))

	return e, nil
}

func (c *Cache) fallback(cause error) (Result, error) {
	if e := c.entry.Load(); e != nil {
		c.metrics.CacheRequests.WithLabelValues("stale").Inc()
		c.logger.Warn("upstream refresh failed, serving stale events",
			"error", cause, "age", c.clock.Since(e.FetchedAt), "events", len(e.Events))
		return Result{Events: e.Events, Stale: true, FetchedAt: e.FetchedAt}, nil
	}

	c.metrics.CacheRequests.WithLabelValues("unavailable").Inc()
	c.logger.Error("upstream refresh failed with no cached events", "error", cause)
	return Result{}, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, cause)
}
