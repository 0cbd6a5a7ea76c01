// Package kafka publishes completed predictions for downstream analytics
// consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/observability"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/pipeline"
)

// Writer produces prediction events to a Kafka topic.
// It implements pipeline.Recorder.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the prediction event topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// RecordPrediction publishes one prediction event. Delivery failures are
// logged and counted but never fail the request that produced the event.
func (w *Writer) RecordPrediction(ctx context.Context, ev pipeline.Event) {
	if ev.RequestID == "" {
		ev.RequestID = uuid.NewString()
	}
	msg, err := serializeToMessage(ev)
	if err != nil {
		w.metrics.EventErrors.Inc()
		w.logger.ErrorContext(ctx, "serialize prediction event", slog.String("error", err.Error()))
		return
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.metrics.EventErrors.Inc()
		w.logger.ErrorContext(ctx, "publish prediction event", slog.String("error", err.Error()))
		return
	}
	w.metrics.EventsPublished.Inc()
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a prediction event into a Kafka message.
func serializeToMessage(ev pipeline.Event) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.RequestID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(ev.Kind)},
			{Key: "predicted_at", Value: []byte(ev.At.Format(time.RFC3339))},
		},
	}, nil
}
