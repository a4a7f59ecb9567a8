package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/natural-events-service/internal/cache"
	"github.com/couchcryptid/natural-events-service/internal/domain"
	"github.com/couchcryptid/natural-events-service/internal/observability"
)

// EventSource is the resilient cache the pipeline reads from.
type EventSource interface {
	Get(ctx context.Context) (cache.Result, error)
	Refresh(ctx context.Context) (cache.Entry, error)
	Peek() (cache.Entry, bool)
}

// BatchLoader writes a classified batch to a downstream sink.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.ClassifiedEvent) error
}

// Snapshot is a classified view of one cache read.
type Snapshot struct {
	Events    []domain.ClassifiedEvent
	Stale     bool
	FetchedAt time.Time
}

// Pipeline turns cached upstream events into classified batches and
// aggregate reports, and optionally publishes each refreshed batch.
type Pipeline struct {
	source     EventSource
	classifier *EventClassifier
	loader     BatchLoader
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline. loader may be nil to disable publishing.
func New(source EventSource, loader BatchLoader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:     source,
		classifier: NewClassifier(metrics, logger),
		loader:     loader,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once the cache holds at least one successful fetch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if _, ok := p.source.Peek(); !ok {
		return errors.New("no events fetched from upstream yet")
	}
	return nil
}

// Raw returns the cached upstream events unchanged.
func (p *Pipeline) Raw(ctx context.Context) (cache.Result, error) {
	return p.source.Get(ctx)
}

// Classified returns the cached events normalized and classified.
func (p *Pipeline) Classified(ctx context.Context) (Snapshot, error) {
	res, err := p.source.Get(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Events:    p.classifier.Classify(res.Events),
		Stale:     res.Stale,
		FetchedAt: res.FetchedAt,
	}, nil
}

// Report aggregates the classified events by category and region.
func (p *Pipeline) Report(ctx context.Context) (domain.AggregateReport, Snapshot, error) {
	snap, err := p.Classified(ctx)
	if err != nil {
		return domain.AggregateReport{}, Snapshot{}, err
	}
	return domain.Aggregate(snap.Events), snap, nil
}

// Event returns the classified event with the given id.
func (p *Pipeline) Event(ctx context.Context, id string) (domain.ClassifiedEvent, bool, error) {
	res, err := p.source.Get(ctx)
	if err != nil {
		return domain.ClassifiedEvent{}, false, err
	}
	for i := range res.Events {
		if res.Events[i].ID == id {
			return domain.ClassifyEvent(res.Events[i]), true, nil
		}
	}
	return domain.ClassifiedEvent{}, false, nil
}

// RunOnce forces a cache refresh and publishes the classified batch when a
// loader is configured. A failed refresh leaves the previous entry in place.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	start := time.Now()

	entry, err := p.source.Refresh(ctx)
	if err != nil {
		return err
	}

	events := p.classifier.Classify(entry.Events)
	if p.loader != nil && len(events) > 0 {
		if err := p.loader.LoadBatch(ctx, events); err != nil {
			p.metrics.PublishErrors.Inc()
			p.logger.Error("publish batch failed", "error", err, "batch_size", len(events))
			return err
		}
		p.metrics.EventsPublished.Add(float64(len(events)))
	}

	p.logger.Info("poll cycle complete",
		"events", len(events),
		"duration", time.Since(start),
	)
	return nil
}
