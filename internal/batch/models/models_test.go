package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	id "aprovame/pkg/domain"
)

func TestBatchAssignorIDsAreDistinctInOrder(t *testing.T) {
	a, b := id.NewAssignorID(), id.NewAssignorID()
	batch := NewBatch([]Item{
		{Value: decimal.NewFromInt(1), AssignorID: b},
		{Value: decimal.NewFromInt(2), AssignorID: a},
		{Value: decimal.NewFromInt(3), AssignorID: b},
	}, time.Now())

	assert.Equal(t, []id.AssignorID{b, a}, batch.AssignorIDs())
	assert.Equal(t, 3, batch.TotalPayables)
	assert.False(t, batch.ID.IsNil())
}

func TestResultCounters(t *testing.T) {
	r := NewResult(NewBatch(make([]Item, 3), time.Now()))
	r.RecordSuccess()
	r.RecordFailure("item 2: failed")
	r.RecordSuccess()

	assert.Equal(t, 2, r.SuccessCount)
	assert.Equal(t, 1, r.FailureCount)
	assert.Equal(t, []string{"item 2: failed"}, r.Errors)
	assert.Equal(t, r.TotalPayables, r.SuccessCount+r.FailureCount)
}
