//go:build integration

package producer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"aprovame/internal/platform/kafka/producer"
	"aprovame/pkg/testutil/containers"
)

type ProducerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestProducerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())

	prod, err := producer.New(producer.Config{
		Brokers:         s.kafka.Brokers,
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *ProducerIntegrationSuite) TestProduceDeliversKeyValueAndHeaders() {
	ctx := context.Background()
	topic := "test-produce-sync"
	s.Require().NoError(s.kafka.CreateTopics(ctx, 1, topic))

	err := s.producer.Produce(ctx, &producer.Message{
		Topic:   topic,
		Key:     []byte("batch-1"),
		Value:   []byte(`{"batchId":"batch-1"}`),
		Headers: map[string]string{"request_id": "req-1"},
	})
	s.Require().NoError(err)

	client, err := s.kafka.NewReader("test-produce-sync-group", topic)
	s.Require().NoError(err)
	defer client.Close()

	record := s.kafka.WaitForRecord(ctx, client, 10*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "batch-1"
	})
	s.Require().NotNil(record)
	s.JSONEq(`{"batchId":"batch-1"}`, string(record.Value))
	s.Require().Len(record.Headers, 1)
	s.Equal("request_id", record.Headers[0].Key)
	s.Equal("req-1", string(record.Headers[0].Value))
}

func (s *ProducerIntegrationSuite) TestProduceAsyncSurvivesCancelledContext() {
	topic := "test-produce-async"
	s.Require().NoError(s.kafka.CreateTopics(context.Background(), 1, topic))

	ctx, cancel := context.WithCancel(context.Background())
	s.Require().NoError(s.producer.ProduceAsync(ctx, &producer.Message{
		Topic: topic,
		Key:   []byte("batch-async"),
		Value: []byte("payload"),
	}))
	cancel()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	s.Require().NoError(s.producer.Flush(flushCtx))

	client, err := s.kafka.NewReader("test-produce-async-group", topic)
	s.Require().NoError(err)
	defer client.Close()

	record := s.kafka.WaitForRecord(context.Background(), client, 10*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "batch-async"
	})
	s.NotNil(record)
}

func (s *ProducerIntegrationSuite) TestPing() {
	s.NoError(s.producer.Ping(context.Background()))
}

func (s *ProducerIntegrationSuite) TestClosedProducerRejectsRecords() {
	prod, err := producer.New(producer.Config{Brokers: s.kafka.Brokers}, nil)
	s.Require().NoError(err)
	prod.Close()
	prod.Close()

	err = prod.ProduceAsync(context.Background(), &producer.Message{Topic: "unused", Value: []byte("x")})
	s.ErrorIs(err, producer.ErrClosed)
	s.ErrorIs(prod.Ping(context.Background()), producer.ErrClosed)
}
