package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	assignormetrics "aprovame/internal/assignor/metrics"
	"aprovame/internal/assignor/models"
	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
	request "aprovame/pkg/platform/middleware/request"
	"aprovame/pkg/platform/sentinel"
	"aprovame/pkg/requestcontext"
)

// Store is the persistence contract for assignors. Reads only see live rows.
type Store interface {
	Create(ctx context.Context, a *models.Assignor) error
	Update(ctx context.Context, a *models.Assignor) error
	FindByID(ctx context.Context, assignorID id.AssignorID) (*models.Assignor, error)
	List(ctx context.Context) ([]*models.Assignor, error)
	SoftDelete(ctx context.Context, assignorID id.AssignorID, at time.Time) error
	ExistingIDs(ctx context.Context, ids []id.AssignorID) (map[id.AssignorID]struct{}, error)
}

// CreateCommand is the validated input for registering an assignor.
type CreateCommand struct {
	Document string
	Email    string
	Phone    string
	Name     string
}

// Service manages the assignor lifecycle.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *assignormetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *assignormetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*models.Assignor, error) {
	a, err := models.NewAssignor(id.NewAssignorID(), cmd.Document, cmd.Email, cmd.Phone, cmd.Name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, s.wrapWriteErr(ctx, err, "failed to create assignor")
	}

	s.logger.InfoContext(ctx, "assignor created",
		"assignor_id", a.ID.String(),
		"request_id", request.GetRequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, assignorID id.AssignorID) (*models.Assignor, error) {
	if err := requireAssignorID(assignorID); err != nil {
		return nil, err
	}
	a, err := s.store.FindByID(ctx, assignorID)
	if err != nil {
		return nil, wrapAssignorErr(err, "failed to load assignor")
	}
	return a, nil
}

// List returns live assignors ordered by name.
func (s *Service) List(ctx context.Context) ([]*models.Assignor, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assignors")
	}
	return list, nil
}

// Update applies a partial update. Uniqueness is checked against other live assignors only.
func (s *Service) Update(ctx context.Context, assignorID id.AssignorID, patch models.Patch) (*models.Assignor, error) {
	if err := requireAssignorID(assignorID); err != nil {
		return nil, err
	}
	a, err := s.store.FindByID(ctx, assignorID)
	if err != nil {
		return nil, wrapAssignorErr(err, "failed to load assignor")
	}
	if err := a.Apply(patch, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, a); err != nil {
		return nil, s.wrapWriteErr(ctx, err, "failed to update assignor")
	}
	return a, nil
}

// Delete soft-deletes the assignor. Its payables are left untouched.
func (s *Service) Delete(ctx context.Context, assignorID id.AssignorID) error {
	if err := requireAssignorID(assignorID); err != nil {
		return err
	}
	if err := s.store.SoftDelete(ctx, assignorID, requestcontext.Now(ctx)); err != nil {
		return wrapAssignorErr(err, "failed to delete assignor")
	}
	s.logger.InfoContext(ctx, "assignor deleted",
		"assignor_id", assignorID.String(),
		"request_id", request.GetRequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	return nil
}

// Exists reports whether a live assignor with the given ID exists.
func (s *Service) Exists(ctx context.Context, assignorID id.AssignorID) (bool, error) {
	_, err := s.store.FindByID(ctx, assignorID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check assignor")
	}
	return true, nil
}

// ExistingIDs returns which of ids belong to live assignors, in one store query.
func (s *Service) ExistingIDs(ctx context.Context, ids []id.AssignorID) (map[id.AssignorID]struct{}, error) {
	found, err := s.store.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check assignors")
	}
	return found, nil
}

func (s *Service) wrapWriteErr(ctx context.Context, err error, action string) error {
	switch {
	case errors.Is(err, models.ErrDocumentTaken):
		s.recordConflict(ctx, "document")
		return dErrors.New(dErrors.CodeConflict, "document already registered")
	case errors.Is(err, models.ErrEmailTaken):
		s.recordConflict(ctx, "email")
		return dErrors.New(dErrors.CodeConflict, "email already registered")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		s.recordConflict(ctx, "other")
		return dErrors.New(dErrors.CodeConflict, "assignor already registered")
	}
	return wrapAssignorErr(err, action)
}

func (s *Service) recordConflict(ctx context.Context, field string) {
	s.logger.WarnContext(ctx, "assignor uniqueness rejected",
		"field", field,
		"request_id", request.GetRequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementConflict(field)
	}
}

func requireAssignorID(assignorID id.AssignorID) error {
	if assignorID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "assignor ID required")
	}
	return nil
}

func wrapAssignorErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "assignor not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
