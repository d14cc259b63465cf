package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	batchmetrics "aprovame/internal/batch/metrics"
	"aprovame/internal/batch/models"
	payablemodels "aprovame/internal/payable/models"
	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
	request "aprovame/pkg/platform/middleware/request"
	"aprovame/pkg/platform/validation"
	"aprovame/pkg/requestcontext"
)

// QueuedMessage is returned to the submitter with every accepted batch.
const QueuedMessage = "batch queued for processing"

// maxReportedAssignors caps how many missing ids a rejection message lists.
const maxReportedAssignors = 5

// AssignorChecker resolves which assignor ids belong to live assignors.
type AssignorChecker interface {
	ExistingIDs(ctx context.Context, ids []id.AssignorID) (map[id.AssignorID]struct{}, error)
}

// Publisher hands a batch to the asynchronous transport without waiting for processing.
type Publisher interface {
	Publish(ctx context.Context, b *models.Batch) error
}

// Service validates batch submissions and enqueues them.
type Service struct {
	assignors AssignorChecker
	publisher Publisher
	logger    *slog.Logger
	metrics   *batchmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *batchmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(assignors AssignorChecker, publisher Publisher, opts ...Option) *Service {
	s := &Service{assignors: assignors, publisher: publisher}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Submit rejects the whole batch on the first failing rule, checked in order:
// size, values, emission dates, assignor existence. Nothing is enqueued on rejection.
func (s *Service) Submit(ctx context.Context, items []models.Item) (*models.Receipt, error) {
	if err := validation.CheckBatchSize(len(items)); err != nil {
		s.reject(ctx, batchmetrics.ReasonSize, err)
		return nil, err
	}

	for i, item := range items {
		if err := payablemodels.ValidateValue(item.Value); err != nil {
			err = itemError(i, err)
			s.reject(ctx, batchmetrics.ReasonValue, err)
			return nil, err
		}
	}

	now := requestcontext.Now(ctx)
	for i, item := range items {
		if err := payablemodels.ValidateEmissionDate(item.EmissionDate, now); err != nil {
			err = itemError(i, err)
			s.reject(ctx, batchmetrics.ReasonDate, err)
			return nil, err
		}
	}

	b := models.NewBatch(items, now)
	if err := s.requireAssignors(ctx, b.AssignorIDs()); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeInternal) {
			s.reject(ctx, batchmetrics.ReasonAssignor, err)
		}
		return nil, err
	}

	if err := s.publisher.Publish(ctx, b); err != nil {
		s.reject(ctx, batchmetrics.ReasonPublish, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue batch")
	}

	s.logger.InfoContext(ctx, "batch queued",
		"batch_id", b.ID.String(),
		"total_payables", b.TotalPayables,
		"request_id", request.GetRequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementAccepted(b.TotalPayables)
	}

	return &models.Receipt{
		BatchID:       b.ID,
		TotalPayables: b.TotalPayables,
		Status:        models.StatusQueued,
		Message:       QueuedMessage,
	}, nil
}

func (s *Service) requireAssignors(ctx context.Context, ids []id.AssignorID) error {
	found, err := s.assignors.ExistingIDs(ctx, ids)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check assignors")
	}
	var missing []string
	for _, assignorID := range ids {
		if _, ok := found[assignorID]; !ok {
			missing = append(missing, assignorID.String())
		}
	}
	if len(missing) == 0 {
		return nil
	}
	listed := missing
	if len(listed) > maxReportedAssignors {
		listed = listed[:maxReportedAssignors]
	}
	msg := fmt.Sprintf("%d assignor(s) not found: %s", len(missing), strings.Join(listed, ", "))
	if len(missing) > len(listed) {
		msg += ", ..."
	}
	return dErrors.New(dErrors.CodeValidation, msg)
}

func (s *Service) reject(ctx context.Context, reason string, err error) {
	s.logger.WarnContext(ctx, "batch rejected",
		"reason", reason,
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementRejected(reason)
	}
}

// itemError prefixes a validation message with the 1-based item position.
func itemError(index int, err error) error {
	return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("item %d: %s", index+1, dErrors.Message(err)))
}
