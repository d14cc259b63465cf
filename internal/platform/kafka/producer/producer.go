// Package producer publishes records to Kafka through a franz-go client.
package producer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	strutil "aprovame/pkg/platform/strings"
)

// ErrClosed is returned once Close has been called.
var ErrClosed = errors.New("producer is closed")

// Message is one record to publish.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Config holds producer configuration.
type Config struct {
	Brokers         string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
	// CloseTimeout bounds the flush performed by Close.
	CloseTimeout time.Duration
}

// DeliveryFailureFunc observes records that the broker never acknowledged.
type DeliveryFailureFunc func(msg *Message, err error)

// Producer wraps the franz-go client.
type Producer struct {
	client       *kgo.Client
	logger       *slog.Logger
	onFailure    DeliveryFailureFunc
	closeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

// Option customises a Producer.
type Option func(p *Producer)

// WithDeliveryFailure registers a callback for asynchronous delivery failures.
func WithDeliveryFailure(fn DeliveryFailureFunc) Option {
	return func(p *Producer) {
		p.onFailure = fn
	}
}

// New creates a producer connected to the comma separated broker list.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Producer, error) {
	if strings.TrimSpace(cfg.Brokers) == "" {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	var acks kgo.Acks
	switch cfg.Acks {
	case "0":
		acks = kgo.NoAck()
	case "1":
		acks = kgo.LeaderAck()
	default:
		acks = kgo.AllISRAcks()
	}

	kopts := []kgo.Opt{
		kgo.SeedBrokers(splitBrokers(cfg.Brokers)...),
		kgo.RequiredAcks(acks),
		kgo.ProducerLinger(5 * time.Millisecond),
		kgo.AllowAutoTopicCreation(),
	}
	if acks != kgo.AllISRAcks() {
		// Idempotent writes require acks=all.
		kopts = append(kopts, kgo.DisableIdempotentWrite())
	}
	if cfg.Retries > 0 {
		kopts = append(kopts, kgo.RecordRetries(cfg.Retries))
	}
	if cfg.DeliveryTimeout > 0 {
		kopts = append(kopts, kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout))
	}

	client, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Producer{
		client:       client,
		logger:       logger,
		closeTimeout: cfg.CloseTimeout,
	}
	if p.closeTimeout <= 0 {
		p.closeTimeout = 30 * time.Second
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Produce publishes msg and waits for the broker acknowledgement.
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	if err := p.client.ProduceSync(ctx, toRecord(msg)).FirstErr(); err != nil {
		return fmt.Errorf("produce message: %w", err)
	}
	return nil
}

// ProduceAsync buffers msg for background delivery and returns immediately.
// The record is detached from ctx cancellation so a finished HTTP request
// never aborts a record that was already accepted. Delivery failures are
// logged and passed to the WithDeliveryFailure callback.
func (p *Producer) ProduceAsync(ctx context.Context, msg *Message) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	p.client.Produce(context.WithoutCancel(ctx), toRecord(msg), func(r *kgo.Record, err error) {
		if err == nil {
			return
		}
		p.logger.ErrorContext(ctx, "kafka delivery failed",
			"topic", r.Topic,
			"key", string(r.Key),
			"error", err,
		)
		if p.onFailure != nil {
			p.onFailure(msg, err)
		}
	})
	return nil
}

// Flush blocks until every buffered record is acknowledged or ctx ends.
func (p *Producer) Flush(ctx context.Context) error {
	return p.client.Flush(ctx)
}

// Close flushes pending records and shuts the client down. Safe to call twice.
func (p *Producer) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.closeTimeout)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("kafka producer closed with unflushed records",
			"buffered", p.client.BufferedProduceRecords(),
			"error", err,
		)
	}
	p.client.Close()
}

// Ping reports whether any seed broker answers. Used by the readiness probe.
func (p *Producer) Ping(ctx context.Context) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	return p.client.Ping(ctx)
}

func (p *Producer) checkOpen() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	return nil
}

func toRecord(msg *Message) *kgo.Record {
	headers := make([]kgo.RecordHeader, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return &kgo.Record{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
}

func splitBrokers(brokers string) []string {
	return strutil.SplitList(brokers, ",")
}
