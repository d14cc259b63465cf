package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aprovame/internal/payable/models"
	id "aprovame/pkg/domain"
	"aprovame/pkg/platform/sentinel"
)

func newPayable(t *testing.T, assignorID id.AssignorID, createdAt time.Time) *models.Payable {
	t.Helper()
	p, err := models.NewPayable(id.NewPayableID(), decimal.NewFromInt(10), createdAt, assignorID, createdAt)
	require.NoError(t, err)
	return p
}

func TestInMemory_ListByAssignorNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assignorID := id.NewAssignorID()

	older := newPayable(t, assignorID, base)
	newer := newPayable(t, assignorID, base.Add(time.Minute))
	sameTime := newPayable(t, assignorID, base.Add(time.Minute))
	other := newPayable(t, id.NewAssignorID(), base)
	for _, p := range []*models.Payable{older, newer, sameTime, other} {
		require.NoError(t, s.Create(ctx, p))
	}

	list, err := s.ListByAssignor(ctx, assignorID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, sameTime.ID, list[0].ID, "ties break on insertion order, latest first")
	assert.Equal(t, newer.ID, list[1].ID)
	assert.Equal(t, older.ID, list[2].ID)
}

func TestInMemory_SoftDelete(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	p := newPayable(t, id.NewAssignorID(), now)
	require.NoError(t, s.Create(ctx, p))
	assert.Equal(t, 1, s.Count())

	require.NoError(t, s.SoftDelete(ctx, p.ID, now))
	_, err := s.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.ErrorIs(t, s.SoftDelete(ctx, p.ID, now), sentinel.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, p), sentinel.ErrNotFound)
	assert.Zero(t, s.Count())
}

func TestInMemory_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	p := newPayable(t, id.NewAssignorID(), time.Now())
	require.NoError(t, s.Create(ctx, p))
	assert.ErrorIs(t, s.Create(ctx, p), sentinel.ErrAlreadyUsed)
}

type assignorRows map[id.AssignorID]bool

func (r assignorRows) HasRow(assignorID id.AssignorID) bool { return r[assignorID] }

func TestInMemory_AssignorReference(t *testing.T) {
	ctx := context.Background()
	known := id.NewAssignorID()
	s := NewInMemory(WithAssignorRows(assignorRows{known: true}))
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	p := newPayable(t, known, now)
	require.NoError(t, s.Create(ctx, p))

	assert.ErrorIs(t, s.Create(ctx, newPayable(t, id.NewAssignorID(), now)), models.ErrAssignorMissing)

	p.AssignorID = id.NewAssignorID()
	assert.ErrorIs(t, s.Update(ctx, p), models.ErrAssignorMissing)
}
