// Package consumer runs a confluent-kafka-go consumer group loop with manual
// offset commits.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// ErrClosed is returned by Run and Ping once the consumer has shut down.
var ErrClosed = errors.New("consumer is closed")

const pollTimeoutMs = 100

// Message is a received Kafka record.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Handler processes consumed messages.
type Handler interface {
	// Handle processes msg. A non-nil error leaves the offset uncommitted so
	// the record is redelivered after a restart or rebalance.
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// Config holds consumer configuration.
type Config struct {
	Brokers         string
	GroupID         string
	Topics          []string
	AutoOffsetReset string
}

// Consumer wraps the confluent-kafka-go consumer.
type Consumer struct {
	consumer *kafka.Consumer
	handler  Handler
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a consumer and subscribes it to cfg.Topics.
func New(cfg Config, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if cfg.Brokers == "" {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka consumer group ID not configured")
	}
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("kafka consumer topics not configured")
	}
	if handler == nil {
		return nil, fmt.Errorf("kafka consumer handler is required")
	}

	autoOffsetReset := cfg.AutoOffsetReset
	if autoOffsetReset == "" {
		autoOffsetReset = "earliest"
	}

	kc, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Brokers,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  autoOffsetReset,
		"enable.auto.commit": false,
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	if err := kc.SubscribeTopics(cfg.Topics, nil); err != nil {
		kc.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("subscribe to topics: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		consumer: kc,
		handler:  handler,
		logger:   logger,
	}, nil
}

// Run polls until ctx is cancelled, then leaves the group and closes the
// client. Messages are handled one at a time on the calling goroutine.
func (c *Consumer) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	defer c.close()
	for {
		if ctx.Err() != nil {
			return nil
		}
		c.poll(ctx)
	}
}

func (c *Consumer) poll(ctx context.Context) {
	ev := c.consumer.Poll(pollTimeoutMs)
	if ev == nil {
		return
	}

	switch e := ev.(type) {
	case *kafka.Message:
		c.handleMessage(ctx, e)
	case kafka.Error:
		if e.Code() != kafka.ErrTimedOut {
			c.logger.ErrorContext(ctx, "kafka consumer error",
				"code", e.Code().String(),
				"error", e.Error(),
			)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, km *kafka.Message) {
	msg := toMessage(km)

	// Handlers run to completion even when shutdown starts mid-message.
	if err := c.handler.Handle(context.WithoutCancel(ctx), msg); err != nil {
		c.logger.ErrorContext(ctx, "failed to handle message",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return
	}

	if _, err := c.consumer.CommitMessage(km); err != nil {
		c.logger.ErrorContext(ctx, "failed to commit offset",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
	}
}

func (c *Consumer) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if err := c.consumer.Close(); err != nil {
		c.logger.Warn("kafka consumer close failed", "error", err)
	}
}

// Ping fetches cluster metadata to confirm the brokers are reachable.
func (c *Consumer) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	timeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}
	if _, err := c.consumer.GetMetadata(nil, false, int(timeout.Milliseconds())); err != nil {
		return fmt.Errorf("kafka metadata: %w", err)
	}
	return nil
}

func toMessage(km *kafka.Message) *Message {
	headers := make(map[string]string, len(km.Headers))
	for _, h := range km.Headers {
		headers[h.Key] = string(h.Value)
	}
	var topic string
	if km.TopicPartition.Topic != nil {
		topic = *km.TopicPartition.Topic
	}
	return &Message{
		Topic:     topic,
		Partition: km.TopicPartition.Partition,
		Offset:    int64(km.TopicPartition.Offset),
		Key:       km.Key,
		Value:     km.Value,
		Headers:   headers,
		Timestamp: km.Timestamp,
	}
}
