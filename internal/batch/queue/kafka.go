package queue

import (
	"context"
	"fmt"
	"log/slog"

	"aprovame/internal/batch/models"
	"aprovame/internal/platform/kafka/consumer"
	"aprovame/internal/platform/kafka/producer"
	request "aprovame/pkg/platform/middleware/request"
	"aprovame/pkg/requestcontext"
)

// DefaultTopic carries accepted batches.
const DefaultTopic = "payables_batch_queue"

const requestIDHeader = "request_id"

// AsyncProducer buffers a record for background delivery.
type AsyncProducer interface {
	ProduceAsync(ctx context.Context, msg *producer.Message) error
}

// KafkaPublisher publishes batches keyed by batch id, so redeliveries of one
// batch stay on one partition.
type KafkaPublisher struct {
	producer AsyncProducer
	topic    string
}

func NewKafkaPublisher(p AsyncProducer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{producer: p, topic: topic}
}

// Publish returns once the record is buffered. Broker delivery happens in the background.
func (p *KafkaPublisher) Publish(ctx context.Context, b *models.Batch) error {
	payload, err := Encode(b)
	if err != nil {
		return err
	}
	msg := &producer.Message{
		Topic: p.topic,
		Key:   []byte(b.ID.String()),
		Value: payload,
	}
	if reqID := request.GetRequestID(ctx); reqID != "" {
		msg.Headers = map[string]string{requestIDHeader: reqID}
	}
	if err := p.producer.ProduceAsync(ctx, msg); err != nil {
		return fmt.Errorf("publish batch %s: %w", b.ID, err)
	}
	return nil
}

// KafkaHandler feeds consumed records to the processor.
type KafkaHandler struct {
	processor BatchProcessor
	logger    *slog.Logger
}

func NewKafkaHandler(processor BatchProcessor, logger *slog.Logger) *KafkaHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaHandler{processor: processor, logger: logger}
}

// Handle never fails: a malformed record is logged and committed since no
// retry can fix it, and the processor absorbs per-item errors itself.
func (h *KafkaHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	if reqID := msg.Headers[requestIDHeader]; reqID != "" {
		ctx = requestcontext.WithRequestID(ctx, reqID)
	}
	b, err := Decode(msg.Value)
	if err != nil {
		h.logger.ErrorContext(ctx, "discarding unreadable batch message",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}
	h.processor.Process(ctx, b)
	return nil
}
