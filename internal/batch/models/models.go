// Package models holds the batch message payload and its processing outcome.
// Neither is persisted: a Batch lives on the queue, a Result lives until the
// completion report is sent.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "aprovame/pkg/domain"
)

// Batch status reported to the submitter.
const StatusQueued = "queued"

// Item is one pending payable creation request.
type Item struct {
	Value        decimal.Decimal
	EmissionDate time.Time
	AssignorID   id.AssignorID
}

// Batch is the unit handed from intake to the processor.
type Batch struct {
	ID            id.BatchID
	Items         []Item
	TotalPayables int
	CreatedAt     time.Time
}

// NewBatch assigns a fresh batch id. Items are kept in submission order.
func NewBatch(items []Item, now time.Time) *Batch {
	return &Batch{
		ID:            id.NewBatchID(),
		Items:         items,
		TotalPayables: len(items),
		CreatedAt:     now,
	}
}

// AssignorIDs returns the distinct assignors referenced by the batch, in first-seen order.
func (b *Batch) AssignorIDs() []id.AssignorID {
	seen := make(map[id.AssignorID]struct{}, len(b.Items))
	out := make([]id.AssignorID, 0)
	for _, item := range b.Items {
		if _, ok := seen[item.AssignorID]; ok {
			continue
		}
		seen[item.AssignorID] = struct{}{}
		out = append(out, item.AssignorID)
	}
	return out
}

// Result accumulates the outcome of one processing pass.
// SuccessCount + FailureCount == TotalPayables and len(Errors) == FailureCount.
type Result struct {
	BatchID       id.BatchID
	TotalPayables int
	SuccessCount  int
	FailureCount  int
	Errors        []string
	ProcessedAt   time.Time
}

func NewResult(b *Batch) *Result {
	return &Result{
		BatchID:       b.ID,
		TotalPayables: b.TotalPayables,
		Errors:        []string{},
	}
}

func (r *Result) RecordSuccess() {
	r.SuccessCount++
}

func (r *Result) RecordFailure(msg string) {
	r.FailureCount++
	r.Errors = append(r.Errors, msg)
}

// Receipt is returned synchronously once a batch is accepted.
type Receipt struct {
	BatchID       id.BatchID
	TotalPayables int
	Status        string
	Message       string
}
