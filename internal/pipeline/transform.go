package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/natural-events-service/internal/domain"
	"github.com/couchcryptid/natural-events-service/internal/observability"
)

// EventClassifier runs domain classification over a raw batch and records
// how many events could not be placed on a map.
type EventClassifier struct {
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClassifier creates an EventClassifier.
func NewClassifier(metrics *observability.Metrics, logger *slog.Logger) *EventClassifier {
	return &EventClassifier{metrics: metrics, logger: logger}
}

// Classify normalizes and tags every event. Events with unusable geometry or
// unknown categories are kept with default tags and no location.
func (c *EventClassifier) Classify(raws []domain.RawEvent) []domain.ClassifiedEvent {
	events := domain.ClassifyBatch(raws)

	unlocated := 0
	for i := range events {
		if !events[i].Located() {
			unlocated++
			c.logger.Debug("event has no usable geometry",
				"event_id", events[i].ID,
				"samples", len(events[i].Geometry),
			)
		}
	}

	c.metrics.EventsClassified.Add(float64(len(events)))
	c.metrics.EventsUnlocated.Add(float64(unlocated))
	return events
}
