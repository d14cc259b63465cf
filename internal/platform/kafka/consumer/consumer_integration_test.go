//go:build integration

package consumer_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aprovame/internal/platform/kafka/consumer"
	"aprovame/internal/platform/kafka/producer"
	"aprovame/pkg/testutil/containers"
)

type ConsumerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestConsumerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ConsumerIntegrationSuite))
}

func (s *ConsumerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())

	prod, err := producer.New(producer.Config{
		Brokers:         s.kafka.Brokers,
		DeliveryTimeout: 10 * time.Second,
	}, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ConsumerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

type recordingHandler struct {
	mu       sync.Mutex
	messages []*consumer.Message
	fail     func(*consumer.Message) error
}

func (h *recordingHandler) Handle(_ context.Context, msg *consumer.Message) error {
	if h.fail != nil {
		if err := h.fail(msg); err != nil {
			return err
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// start runs the consumer in the background and returns a stop function.
func (s *ConsumerIntegrationSuite) start(groupID, topic string, h consumer.Handler) func() {
	cons, err := consumer.New(consumer.Config{
		Brokers: s.kafka.Brokers,
		GroupID: groupID,
		Topics:  []string{topic},
	}, h, nil)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cons.Run(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			s.NoError(err)
		case <-time.After(10 * time.Second):
			s.Fail("consumer did not stop")
		}
	}
}

func (s *ConsumerIntegrationSuite) produce(topic, key string, headers map[string]string) {
	err := s.producer.Produce(context.Background(), &producer.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   []byte("payload-" + key),
		Headers: headers,
	})
	s.Require().NoError(err)
}

func (s *ConsumerIntegrationSuite) TestReceivesMessagesWithHeaders() {
	topic := "test-consumer-receives"
	s.Require().NoError(s.kafka.CreateTopics(context.Background(), 1, topic))
	s.produce(topic, "a", map[string]string{"request_id": "req-a"})
	s.produce(topic, "b", nil)

	h := &recordingHandler{}
	stop := s.start("test-consumer-receives-group", topic, h)
	s.Eventually(func() bool { return h.count() >= 2 }, 20*time.Second, 100*time.Millisecond)
	stop()

	h.mu.Lock()
	defer h.mu.Unlock()
	s.Equal("a", string(h.messages[0].Key))
	s.Equal("payload-a", string(h.messages[0].Value))
	s.Equal("req-a", h.messages[0].Headers["request_id"])
	s.Equal(topic, h.messages[0].Topic)
}

// A failed handler leaves the offset uncommitted, so the next member of the
// group sees the record again.
func (s *ConsumerIntegrationSuite) TestFailedHandleIsRedelivered() {
	topic := "test-consumer-redelivery"
	s.Require().NoError(s.kafka.CreateTopics(context.Background(), 1, topic))
	s.produce(topic, "retry-me", nil)
	groupID := "test-consumer-redelivery-" + time.Now().Format("150405")

	var attempts atomic.Int32
	failing := &recordingHandler{fail: func(*consumer.Message) error {
		attempts.Add(1)
		return errors.New("downstream unavailable")
	}}
	stop := s.start(groupID, topic, failing)
	s.Eventually(func() bool { return attempts.Load() >= 1 }, 20*time.Second, 100*time.Millisecond)
	stop()

	succeeding := &recordingHandler{}
	stop = s.start(groupID, topic, succeeding)
	s.Eventually(func() bool { return succeeding.count() >= 1 }, 20*time.Second, 100*time.Millisecond)
	stop()
}

func (s *ConsumerIntegrationSuite) TestPingAndClosedState() {
	topic := "test-consumer-ping"
	cons, err := consumer.New(consumer.Config{
		Brokers: s.kafka.Brokers,
		GroupID: "test-consumer-ping-group",
		Topics:  []string{topic},
	}, consumer.HandlerFunc(func(context.Context, *consumer.Message) error { return nil }), nil)
	s.Require().NoError(err)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.NoError(cons.Ping(pingCtx))

	runCtx, stop := context.WithCancel(context.Background())
	stop()
	s.NoError(cons.Run(runCtx))
	s.ErrorIs(cons.Ping(context.Background()), consumer.ErrClosed)
	s.ErrorIs(cons.Run(context.Background()), consumer.ErrClosed)
}

func (s *ConsumerIntegrationSuite) TestNewRequiresTopics() {
	_, err := consumer.New(consumer.Config{Brokers: s.kafka.Brokers, GroupID: "g"},
		consumer.HandlerFunc(func(context.Context, *consumer.Message) error { return nil }), nil)
	s.Error(err)
}
