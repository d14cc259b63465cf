package queue

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"aprovame/internal/batch/models"
	request "aprovame/pkg/platform/middleware/request"
	"aprovame/pkg/requestcontext"
)

var (
	ErrQueueFull   = errors.New("batch queue is full")
	ErrQueueClosed = errors.New("batch queue is closed")
)

// BatchProcessor consumes one batch. A nil result means the batch was skipped.
type BatchProcessor interface {
	Process(ctx context.Context, b *models.Batch) *models.Result
}

type envelope struct {
	batch     *models.Batch
	requestID string
}

// MemoryQueue is an in-process queue drained by a fixed worker pool. Batches
// still buffered when the queue stops are processed before Run returns.
type MemoryQueue struct {
	processor BatchProcessor
	workers   int
	logger    *slog.Logger

	ch     chan envelope
	mu     sync.RWMutex
	closed bool
}

type MemoryOption func(q *MemoryQueue)

func WithWorkers(n int) MemoryOption {
	return func(q *MemoryQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithMemoryLogger(logger *slog.Logger) MemoryOption {
	return func(q *MemoryQueue) {
		q.logger = logger
	}
}

func NewMemoryQueue(processor BatchProcessor, buffer int, opts ...MemoryOption) *MemoryQueue {
	if buffer < 1 {
		buffer = 1
	}
	q := &MemoryQueue{
		processor: processor,
		workers:   1,
		ch:        make(chan envelope, buffer),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	return q
}

// Publish hands b to the workers without blocking. The queue keeps its own
// copy of the item slice.
func (q *MemoryQueue) Publish(ctx context.Context, b *models.Batch) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	cp := *b
	cp.Items = slices.Clone(b.Items)
	select {
	case q.ch <- envelope{batch: &cp, requestID: request.GetRequestID(ctx)}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes batches until ctx is cancelled, then stops accepting new
// batches and drains what is already buffered.
func (q *MemoryQueue) Run(ctx context.Context) error {
	g := new(errgroup.Group)
	for range q.workers {
		g.Go(func() error {
			q.work(context.WithoutCancel(ctx))
			return nil
		})
	}

	<-ctx.Done()
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	pending := len(q.ch)
	q.mu.Unlock()
	if pending > 0 {
		q.logger.Info("draining batch queue", "pending", pending)
	}

	return g.Wait()
}

func (q *MemoryQueue) work(ctx context.Context) {
	for env := range q.ch {
		bctx := ctx
		if env.requestID != "" {
			bctx = requestcontext.WithRequestID(ctx, env.requestID)
		}
		q.processor.Process(bctx, env.batch)
	}
}

// Len reports how many batches are waiting for a worker.
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}
