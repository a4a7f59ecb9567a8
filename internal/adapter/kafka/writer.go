package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/natural-events-service/internal/config"
	"github.com/couchcryptid/natural-events-service/internal/domain"
)

// Writer publishes classified events to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes a classified batch in a single
// WriteMessages call. Events are keyed by id so updates to one event land
// on the same partition.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.ClassifiedEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("published classified batch", "topic", w.writer.Topic, "events", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ClassifiedEvent into a Kafka message.
func serializeToMessage(event domain.ClassifiedEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize classified event %s: %w", event.ID, err)
	}
	headers := []kafkago.Header{
		{Key: "category", Value: []byte(event.Category)},
		{Key: "processed_at", Value: []byte(event.ProcessedAt.Format(time.RFC3339))},
	}
	if event.Region != "" {
		headers = append(headers, kafkago.Header{Key: "region", Value: []byte(event.Region)})
	}
	return kafkago.Message{
		Key:     []byte(event.ID),
		Value:   data,
		Headers: headers,
	}, nil
}
