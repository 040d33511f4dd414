package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-relief-allocator/internal/config"
	"github.com/couchcryptid/storm-relief-allocator/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes committed outcomes to a Kafka topic.
// It implements pipeline.OutcomePublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured outcome topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaOutcomeTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one outcome and writes it keyed by submission ID.
func (w *Writer) Publish(ctx context.Context, outcome domain.Outcome) error {
	msg, err := serializeToMessage(outcome)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write outcome %s: %w", outcome.SubmissionID, err)
	}
	w.logger.Debug("outcome published", "submission_id", outcome.SubmissionID, "topic", w.writer.Topic)
	return nil
}

// Close flushes pending writes and releases the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// outcomeRecord is the wire form of an outcome on the topic.
type outcomeRecord struct {
	SubmissionID string                    `json:"submission_id"`
	Outcome      string                    `json:"outcome"`
	Request      *domain.AllocationRequest `json:"request,omitempty"`
	Result       *domain.AllocationResult  `json:"result,omitempty"`
	StatusCode   int                       `json:"status_code,omitempty"`
	Error        string                    `json:"error,omitempty"`
	CompletedAt  time.Time                 `json:"completed_at"`
}

func newOutcomeRecord(o domain.Outcome) outcomeRecord {
	rec := outcomeRecord{
		SubmissionID: o.SubmissionID,
		Outcome:      o.Label(),
		Request:      o.Request,
		CompletedAt:  o.CompletedAt,
	}
	if o.OK() {
		result := o.Result
		rec.Result = &result
		rec.StatusCode = o.Result.StatusCode
	} else {
		rec.Error = o.Err.Error()
	}
	return rec
}

// serializeToMessage marshals an Outcome into a Kafka message.
func serializeToMessage(o domain.Outcome) (kafkago.Message, error) {
	data, err := json.Marshal(newOutcomeRecord(o))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize outcome: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(o.SubmissionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(o.Label())},
			{Key: "completed_at", Value: []byte(o.CompletedAt.Format(time.RFC3339))},
		},
	}, nil
}
