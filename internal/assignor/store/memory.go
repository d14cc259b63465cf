package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"aprovame/internal/assignor/models"
	id "aprovame/pkg/domain"
	"aprovame/pkg/platform/sentinel"
)

// InMemory stores assignors in memory for local runs and tests.
// Document and email indexes cover live rows only.
type InMemory struct {
	mu        sync.RWMutex
	assignors map[id.AssignorID]*models.Assignor
	docIdx    map[string]id.AssignorID
	emailIdx  map[string]id.AssignorID
}

// NewInMemory creates an empty in-memory assignor store.
func NewInMemory() *InMemory {
	return &InMemory{
		assignors: make(map[id.AssignorID]*models.Assignor),
		docIdx:    make(map[string]id.AssignorID),
		emailIdx:  make(map[string]id.AssignorID),
	}
}

// Create inserts a if neither its document nor its email belongs to another live assignor.
func (s *InMemory) Create(_ context.Context, a *models.Assignor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique(a); err != nil {
		return err
	}
	cp := *a
	s.assignors[a.ID] = &cp
	s.index(&cp)
	return nil
}

// FindByID returns the live assignor with the given ID.
func (s *InMemory) FindByID(_ context.Context, assignorID id.AssignorID) (*models.Assignor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignors[assignorID]
	if !ok || a.IsDeleted() {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// List returns live assignors ordered by name.
func (s *InMemory) List(_ context.Context) ([]*models.Assignor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Assignor, 0, len(s.assignors))
	for _, a := range s.assignors {
		if a.IsDeleted() {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(x, y *models.Assignor) int {
		return cmp.Or(cmp.Compare(x.Name, y.Name), cmp.Compare(x.ID.String(), y.ID.String()))
	})
	return out, nil
}

// Update replaces a live assignor. Uniqueness is re-checked against other rows.
func (s *InMemory) Update(_ context.Context, a *models.Assignor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.assignors[a.ID]
	if !ok || current.IsDeleted() {
		return sentinel.ErrNotFound
	}
	if err := s.checkUnique(a); err != nil {
		return err
	}
	s.unindex(current)
	cp := *a
	s.assignors[a.ID] = &cp
	s.index(&cp)
	return nil
}

// SoftDelete marks a live assignor deleted and frees its document and email.
func (s *InMemory) SoftDelete(_ context.Context, assignorID id.AssignorID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignors[assignorID]
	if !ok || a.IsDeleted() {
		return sentinel.ErrNotFound
	}
	s.unindex(a)
	a.DeletedAt = &at
	a.UpdatedAt = at
	return nil
}

// HasRow reports whether any row, live or soft-deleted, carries assignorID.
// It mirrors the payables foreign key, which soft deletes do not break.
func (s *InMemory) HasRow(assignorID id.AssignorID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.assignors[assignorID]
	return ok
}

// ExistingIDs returns the subset of ids that belong to live assignors.
func (s *InMemory) ExistingIDs(_ context.Context, ids []id.AssignorID) (map[id.AssignorID]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[id.AssignorID]struct{}, len(ids))
	for _, assignorID := range ids {
		if a, ok := s.assignors[assignorID]; ok && !a.IsDeleted() {
			found[assignorID] = struct{}{}
		}
	}
	return found, nil
}

func (s *InMemory) checkUnique(a *models.Assignor) error {
	if owner, ok := s.docIdx[a.Document]; ok && owner != a.ID {
		return models.ErrDocumentTaken
	}
	if owner, ok := s.emailIdx[strings.ToLower(a.Email)]; ok && owner != a.ID {
		return models.ErrEmailTaken
	}
	return nil
}

func (s *InMemory) index(a *models.Assignor) {
	s.docIdx[a.Document] = a.ID
	s.emailIdx[strings.ToLower(a.Email)] = a.ID
}

func (s *InMemory) unindex(a *models.Assignor) {
	delete(s.docIdx, a.Document)
	delete(s.emailIdx, strings.ToLower(a.Email))
}
