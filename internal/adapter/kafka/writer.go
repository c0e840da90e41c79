package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/event-traffic-controller/internal/config"
	"github.com/couchcryptid/event-traffic-controller/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes simulation records to a Kafka topic.
// It implements domain.SimulationPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured simulation topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSimulationTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one record keyed by session ID, so all runs of a session
// land on the same partition in order.
func (w *Writer) Publish(ctx context.Context, rec domain.SimulationRecord) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write simulation record: %w", err)
	}
	w.logger.Debug("simulation record published",
		"topic", w.writer.Topic,
		"session_id", rec.SessionID,
		"peak_hour", rec.PeakHour,
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SimulationRecord into a Kafka message.
func serializeToMessage(rec domain.SimulationRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize simulation record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.SessionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_name", Value: []byte(rec.Request.EventName)},
			{Key: "date", Value: []byte(rec.Request.Date)},
			{Key: "simulated_at", Value: []byte(rec.SimulatedAt.Format(time.RFC3339))},
		},
	}, nil
}
