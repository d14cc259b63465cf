package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	batchmetrics "aprovame/internal/batch/metrics"
	"aprovame/internal/batch/models"
	payablemodels "aprovame/internal/payable/models"
	payableservice "aprovame/internal/payable/service"
	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
	"aprovame/pkg/requestcontext"
)

const (
	DefaultBudgetBase    = 30 * time.Second
	DefaultBudgetPerItem = 50 * time.Millisecond

	// notifyTimeout bounds the completion report independently of the item budget.
	notifyTimeout = 30 * time.Second

	budgetExceeded = "processing budget exceeded"
)

// PayableCreator persists one batch item. It does not look the assignor up;
// a broken reference surfaces as the store's error.
type PayableCreator interface {
	Import(ctx context.Context, cmd payableservice.CreateCommand) (*payablemodels.Payable, error)
}

// Notifier sends the completion report. An empty recipient means the configured fallback.
type Notifier interface {
	NotifyBatchCompleted(ctx context.Context, result *models.Result, recipient string) error
}

// Deduplicator remembers batches whose drain pass and report completed.
// A batch interrupted before MarkProcessed is processed again on redelivery.
type Deduplicator interface {
	Processed(ctx context.Context, batchID id.BatchID) (bool, error)
	MarkProcessed(ctx context.Context, batchID id.BatchID) error
}

// Processor drains one batch at a time. Item failures never abort the batch.
type Processor struct {
	payables      PayableCreator
	notifier      Notifier
	dedup         Deduplicator
	recipient     string
	budgetBase    time.Duration
	budgetPerItem time.Duration
	clock         func() time.Time
	tracer        trace.Tracer
	logger        *slog.Logger
	metrics       *batchmetrics.Metrics
}

type Option func(p *Processor)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

func WithMetrics(m *batchmetrics.Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithDeduplicator skips batches already fully processed.
func WithDeduplicator(d Deduplicator) Option {
	return func(p *Processor) {
		p.dedup = d
	}
}

func WithRecipient(address string) Option {
	return func(p *Processor) {
		p.recipient = address
	}
}

// WithBudget sets the per-batch time budget to base + perItem × item count.
func WithBudget(base, perItem time.Duration) Option {
	return func(p *Processor) {
		p.budgetBase = base
		p.budgetPerItem = perItem
	}
}

func WithClock(clock func() time.Time) Option {
	return func(p *Processor) {
		p.clock = clock
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(p *Processor) {
		p.tracer = tracer
	}
}

func New(payables PayableCreator, notifier Notifier, opts ...Option) *Processor {
	p := &Processor{
		payables:      payables,
		notifier:      notifier,
		budgetBase:    DefaultBudgetBase,
		budgetPerItem: DefaultBudgetPerItem,
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer("aprovame/batch/processor")
	}
	return p
}

// Process persists every item in input order and notifies once. It returns nil
// only when the dedup guard reports the batch as already fully processed.
func (p *Processor) Process(ctx context.Context, b *models.Batch) *models.Result {
	ctx, span := p.tracer.Start(ctx, "batch.process", trace.WithAttributes(
		attribute.String("batch.id", b.ID.String()),
		attribute.Int("batch.total_payables", b.TotalPayables),
	))
	defer span.End()

	if p.alreadyProcessed(ctx, b.ID) {
		span.SetAttributes(attribute.Bool("batch.duplicate", true))
		return nil
	}

	start := p.clock()
	budget := p.budgetBase + p.budgetPerItem*time.Duration(len(b.Items))
	itemCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	result := models.NewResult(b)
	for i, item := range b.Items {
		if err := p.processItem(itemCtx, item); err != nil {
			result.RecordFailure(fmt.Sprintf("item %d: failed to create payable: %s", i+1, dErrors.Message(err)))
			continue
		}
		result.RecordSuccess()
	}
	result.ProcessedAt = p.clock()

	span.SetAttributes(
		attribute.Int("batch.success_count", result.SuccessCount),
		attribute.Int("batch.failure_count", result.FailureCount),
	)
	p.logger.InfoContext(ctx, "batch processed",
		"batch_id", b.ID.String(),
		"total_payables", result.TotalPayables,
		"success_count", result.SuccessCount,
		"failure_count", result.FailureCount,
		"duration", result.ProcessedAt.Sub(start).String(),
	)
	if p.metrics != nil {
		p.metrics.ObserveItems(result.SuccessCount, result.FailureCount)
		p.metrics.ObserveBatchDuration(start)
	}

	p.notify(ctx, result)
	p.markProcessed(ctx, b.ID)
	return result
}

func (p *Processor) processItem(ctx context.Context, item models.Item) error {
	if ctx.Err() != nil {
		return dErrors.New(dErrors.CodeTimeout, budgetExceeded)
	}
	now := p.clock()
	if err := payablemodels.ValidateValue(item.Value); err != nil {
		return err
	}
	if err := payablemodels.ValidateEmissionDate(item.EmissionDate, now); err != nil {
		return err
	}
	_, err := p.payables.Import(requestcontext.WithTime(ctx, now), payableservice.CreateCommand{
		Value:        item.Value,
		EmissionDate: item.EmissionDate,
		AssignorID:   item.AssignorID,
	})
	if err != nil && ctx.Err() != nil {
		return dErrors.New(dErrors.CodeTimeout, budgetExceeded)
	}
	return err
}

// alreadyProcessed consults the dedup guard. Guard errors fall back to
// processing so a cache outage never drops a batch.
func (p *Processor) alreadyProcessed(ctx context.Context, batchID id.BatchID) bool {
	if p.dedup == nil {
		return false
	}
	done, err := p.dedup.Processed(ctx, batchID)
	if err != nil {
		p.logger.WarnContext(ctx, "dedup check failed, processing anyway",
			"batch_id", batchID.String(),
			"error", err,
		)
		return false
	}
	if done {
		p.logger.InfoContext(ctx, "skipping redelivered batch", "batch_id", batchID.String())
		if p.metrics != nil {
			p.metrics.IncrementDuplicate()
		}
	}
	return done
}

func (p *Processor) markProcessed(ctx context.Context, batchID id.BatchID) {
	if p.dedup == nil {
		return
	}
	if err := p.dedup.MarkProcessed(context.WithoutCancel(ctx), batchID); err != nil {
		p.logger.WarnContext(ctx, "could not record processed batch",
			"batch_id", batchID.String(),
			"error", err,
		)
	}
}

// notify sends the report once. Failures are logged and swallowed.
func (p *Processor) notify(ctx context.Context, result *models.Result) {
	if p.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := p.notifier.NotifyBatchCompleted(notifyCtx, result, p.recipient); err != nil {
		p.logger.ErrorContext(ctx, "batch completion notification failed",
			"batch_id", result.BatchID.String(),
			"error", err,
		)
		if p.metrics != nil {
			p.metrics.IncrementNotifyFailure()
		}
	}
}
