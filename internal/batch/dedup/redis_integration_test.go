//go:build integration

package dedup_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"aprovame/internal/batch/dedup"
	id "aprovame/pkg/domain"
	"aprovame/pkg/testutil/containers"
)

type RedisDedupSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *dedup.Redis
}

func TestRedisDedupSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisDedupSuite))
}

func (s *RedisDedupSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = dedup.NewRedis(s.redis.Client, time.Hour)
}

func (s *RedisDedupSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(context.Background()))
}

func (s *RedisDedupSuite) TestMarkThenProcessed() {
	ctx := context.Background()
	batchID := id.NewBatchID()

	done, err := s.store.Processed(ctx, batchID)
	s.Require().NoError(err)
	s.False(done)

	s.Require().NoError(s.store.MarkProcessed(ctx, batchID))
	done, err = s.store.Processed(ctx, batchID)
	s.Require().NoError(err)
	s.True(done)
}

func (s *RedisDedupSuite) TestMarkCarriesTTL() {
	ctx := context.Background()
	batchID := id.NewBatchID()
	s.Require().NoError(s.store.MarkProcessed(ctx, batchID))

	ttl, err := s.redis.Client.TTL(ctx, "aprovame:batch:processed:"+batchID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 59*time.Minute)
}

func (s *RedisDedupSuite) TestSharedAcrossClients() {
	ctx := context.Background()
	batchID := id.NewBatchID()
	s.Require().NoError(s.store.MarkProcessed(ctx, batchID))

	opts, err := redis.ParseURL(s.redis.URL)
	s.Require().NoError(err)
	client := redis.NewClient(opts)
	defer client.Close() //nolint:errcheck // test client

	done, err := dedup.NewRedis(client, time.Hour).Processed(ctx, batchID)
	s.Require().NoError(err)
	s.True(done)
}

func (s *RedisDedupSuite) TestUnavailableRedisReturnsError() {
	opts, err := redis.ParseURL(s.redis.URL)
	s.Require().NoError(err)
	client := redis.NewClient(opts)
	s.Require().NoError(client.Close())
	store := dedup.NewRedis(client, time.Hour)

	_, err = store.Processed(context.Background(), id.NewBatchID())
	s.ErrorIs(err, redis.ErrClosed)
	s.ErrorIs(store.MarkProcessed(context.Background(), id.NewBatchID()), redis.ErrClosed)
}
