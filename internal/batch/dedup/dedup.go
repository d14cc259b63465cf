// Package dedup remembers which batch ids finished processing so a
// redelivered queue message is not persisted twice.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	id "aprovame/pkg/domain"
)

const keyPrefix = "aprovame:batch:processed:"

// InMemory keeps processed ids for the lifetime of the process. Entries expire after ttl.
type InMemory struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	done map[id.BatchID]time.Time
}

func NewInMemory(ttl time.Duration) *InMemory {
	return &InMemory{
		ttl:  ttl,
		now:  time.Now,
		done: make(map[id.BatchID]time.Time),
	}
}

func (s *InMemory) Processed(_ context.Context, batchID id.BatchID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expires, ok := s.done[batchID]
	return ok && s.now().Before(expires), nil
}

func (s *InMemory) MarkProcessed(_ context.Context, batchID id.BatchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	s.done[batchID] = now.Add(s.ttl)
	return nil
}

func (s *InMemory) sweep(now time.Time) {
	for k, expires := range s.done {
		if !now.Before(expires) {
			delete(s.done, k)
		}
	}
}

// Redis records processed ids so every processor replica shares one view.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (s *Redis) Processed(ctx context.Context, batchID id.BatchID) (bool, error) {
	err := s.client.Get(ctx, keyPrefix+batchID.String()).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("check batch %s: %w", batchID, err)
	}
}

func (s *Redis) MarkProcessed(ctx context.Context, batchID id.BatchID) error {
	err := s.client.Set(ctx, keyPrefix+batchID.String(), time.Now().UTC().Format(time.RFC3339), s.ttl).Err()
	if err != nil {
		return fmt.Errorf("mark batch %s processed: %w", batchID, err)
	}
	return nil
}
