package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/metar-flight-category/internal/config"
	"github.com/couchcryptid/metar-flight-category/internal/domain"
)

// Writer produces station categories to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes one polling cycle in a single WriteMessages call.
// Messages are keyed by station so each station's history stays ordered
// within a partition.
func (w *Writer) LoadBatch(ctx context.Context, categories []domain.StationCategory) error {
	if len(categories) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(categories))
	for i := range categories {
		msg, err := serializeToMessage(categories[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d categories: %w", len(msgs), err)
	}
	w.logger.Debug("categories published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a StationCategory into a Kafka message.
func serializeToMessage(sc domain.StationCategory) (kafkago.Message, error) {
	data, err := json.Marshal(sc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station category: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(sc.Station),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "flight_category", Value: []byte(sc.Flight.Category.String())},
			{Key: "processed_at", Value: []byte(sc.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
