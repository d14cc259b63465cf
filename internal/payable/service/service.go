package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	payablemetrics "aprovame/internal/payable/metrics"
	"aprovame/internal/payable/models"
	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
	"aprovame/pkg/platform/sentinel"
	"aprovame/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, p *models.Payable) error
	Update(ctx context.Context, p *models.Payable) error
	FindByID(ctx context.Context, payableID id.PayableID) (*models.Payable, error)
	ListByAssignor(ctx context.Context, assignorID id.AssignorID) ([]*models.Payable, error)
	SoftDelete(ctx context.Context, payableID id.PayableID, at time.Time) error
}

// AssignorChecker reports whether a live assignor exists.
type AssignorChecker interface {
	Exists(ctx context.Context, assignorID id.AssignorID) (bool, error)
}

type CreateCommand struct {
	Value        decimal.Decimal
	EmissionDate time.Time
	AssignorID   id.AssignorID
}

type Service struct {
	store     Store
	assignors AssignorChecker
	logger    *slog.Logger
	metrics   *payablemetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *payablemetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, assignors AssignorChecker, opts ...Option) *Service {
	s := &Service{store: store, assignors: assignors}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Create validates and persists one payable. The emission date is checked
// against the request-scoped clock.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*models.Payable, error) {
	p, err := models.NewPayable(id.NewPayableID(), cmd.Value, cmd.EmissionDate, cmd.AssignorID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.requireAssignor(ctx, cmd.AssignorID); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, wrapPayableErr(err, "failed to create payable")
	}
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	return p, nil
}

// Import persists one payable from an accepted batch. Assignor existence was
// settled at intake, so only the store's foreign key can reject the reference;
// a soft-deleted assignor still owns new payables.
func (s *Service) Import(ctx context.Context, cmd CreateCommand) (*models.Payable, error) {
	p, err := models.NewPayable(id.NewPayableID(), cmd.Value, cmd.EmissionDate, cmd.AssignorID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, wrapPayableErr(err, "failed to create payable")
	}
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, payableID id.PayableID) (*models.Payable, error) {
	if payableID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "payable ID required")
	}
	p, err := s.store.FindByID(ctx, payableID)
	if err != nil {
		return nil, wrapPayableErr(err, "failed to load payable")
	}
	return p, nil
}

// ListByAssignor returns the assignor's live payables, newest first.
func (s *Service) ListByAssignor(ctx context.Context, assignorID id.AssignorID) ([]*models.Payable, error) {
	if err := s.requireAssignor(ctx, assignorID); err != nil {
		return nil, err
	}
	list, err := s.store.ListByAssignor(ctx, assignorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list payables")
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, payableID id.PayableID, patch models.Patch) (*models.Payable, error) {
	p, err := s.Get(ctx, payableID)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(patch, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if patch.AssignorID != nil {
		if err := s.requireAssignor(ctx, *patch.AssignorID); err != nil {
			return nil, err
		}
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, wrapPayableErr(err, "failed to update payable")
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, payableID id.PayableID) error {
	if payableID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "payable ID required")
	}
	if err := s.store.SoftDelete(ctx, payableID, requestcontext.Now(ctx)); err != nil {
		return wrapPayableErr(err, "failed to delete payable")
	}
	s.logger.InfoContext(ctx, "payable deleted", "payable_id", payableID.String())
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	return nil
}

func (s *Service) requireAssignor(ctx context.Context, assignorID id.AssignorID) error {
	if assignorID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "assignor ID required")
	}
	ok, err := s.assignors.Exists(ctx, assignorID)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "assignor not found")
	}
	return nil
}

func wrapPayableErr(err error, action string) error {
	switch {
	case errors.Is(err, models.ErrAssignorMissing):
		return dErrors.New(dErrors.CodeNotFound, "assignor not found")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "payable not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "payable already exists")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
