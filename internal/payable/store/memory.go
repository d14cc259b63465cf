package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"aprovame/internal/payable/models"
	id "aprovame/pkg/domain"
	"aprovame/pkg/platform/sentinel"
)

type entry struct {
	payable models.Payable
	seq     uint64
}

// AssignorRows reports whether an assignor row exists, deleted or not.
type AssignorRows interface {
	HasRow(assignorID id.AssignorID) bool
}

// InMemory stores payables in memory for local runs and tests.
type InMemory struct {
	mu       sync.RWMutex
	payables map[id.PayableID]*entry
	seq      uint64
	rows     AssignorRows
}

type MemoryOption func(s *InMemory)

// WithAssignorRows enforces the assignor reference the way the Postgres
// foreign key does. Without it any assignor id is accepted.
func WithAssignorRows(rows AssignorRows) MemoryOption {
	return func(s *InMemory) {
		s.rows = rows
	}
}

func NewInMemory(opts ...MemoryOption) *InMemory {
	s := &InMemory{payables: make(map[id.PayableID]*entry)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) Create(_ context.Context, p *models.Payable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.payables[p.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	if s.rows != nil && !s.rows.HasRow(p.AssignorID) {
		return models.ErrAssignorMissing
	}
	s.seq++
	s.payables[p.ID] = &entry{payable: *p, seq: s.seq}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, payableID id.PayableID) (*models.Payable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.payables[payableID]
	if !ok || e.payable.IsDeleted() {
		return nil, sentinel.ErrNotFound
	}
	cp := e.payable
	return &cp, nil
}

// ListByAssignor returns live payables of an assignor, newest first.
func (s *InMemory) ListByAssignor(_ context.Context, assignorID id.AssignorID) ([]*models.Payable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]*entry, 0)
	for _, e := range s.payables {
		if e.payable.AssignorID == assignorID && !e.payable.IsDeleted() {
			matches = append(matches, e)
		}
	}
	slices.SortFunc(matches, func(a, b *entry) int {
		return cmp.Or(b.payable.CreatedAt.Compare(a.payable.CreatedAt), cmp.Compare(b.seq, a.seq))
	})
	out := make([]*models.Payable, len(matches))
	for i, e := range matches {
		cp := e.payable
		out[i] = &cp
	}
	return out, nil
}

func (s *InMemory) Update(_ context.Context, p *models.Payable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.payables[p.ID]
	if !ok || e.payable.IsDeleted() {
		return sentinel.ErrNotFound
	}
	if s.rows != nil && !s.rows.HasRow(p.AssignorID) {
		return models.ErrAssignorMissing
	}
	e.payable = *p
	return nil
}

func (s *InMemory) SoftDelete(_ context.Context, payableID id.PayableID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.payables[payableID]
	if !ok || e.payable.IsDeleted() {
		return sentinel.ErrNotFound
	}
	e.payable.DeletedAt = &at
	e.payable.UpdatedAt = at
	return nil
}

// Count returns the number of live payables. Used by tests and the e2e harness.
func (s *InMemory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.payables {
		if !e.payable.IsDeleted() {
			n++
		}
	}
	return n
}
