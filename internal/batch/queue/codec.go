// Package queue moves accepted batches from intake to the processor, either
// over Kafka or through an in-process channel.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"aprovame/internal/batch/models"
	id "aprovame/pkg/domain"
)

// ErrMalformedPayload marks a queue message that can never be processed.
var ErrMalformedPayload = errors.New("malformed batch payload")

type wirePayable struct {
	Value        json.Number   `json:"value"`
	EmissionDate time.Time     `json:"emissionDate"`
	Assignor     id.AssignorID `json:"assignor"`
}

type wireBatch struct {
	BatchID       id.BatchID    `json:"batchId"`
	Payables      []wirePayable `json:"payables"`
	TotalPayables int           `json:"totalPayables"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Encode renders b as the JSON queue payload.
func Encode(b *models.Batch) ([]byte, error) {
	w := wireBatch{
		BatchID:       b.ID,
		Payables:      make([]wirePayable, len(b.Items)),
		TotalPayables: b.TotalPayables,
		CreatedAt:     b.CreatedAt.UTC(),
	}
	for i, item := range b.Items {
		w.Payables[i] = wirePayable{
			Value:        json.Number(item.Value.String()),
			EmissionDate: item.EmissionDate.UTC(),
			Assignor:     item.AssignorID,
		}
	}
	payload, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode batch %s: %w", b.ID, err)
	}
	return payload, nil
}

// Decode parses a queue payload. Item rules are not checked here; the
// processor re-validates every item.
func Decode(payload []byte) (*models.Batch, error) {
	var w wireBatch
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if w.BatchID.IsNil() {
		return nil, fmt.Errorf("%w: missing batchId", ErrMalformedPayload)
	}
	if w.TotalPayables != len(w.Payables) {
		return nil, fmt.Errorf("%w: totalPayables %d does not match %d payables",
			ErrMalformedPayload, w.TotalPayables, len(w.Payables))
	}

	items := make([]models.Item, len(w.Payables))
	for i, p := range w.Payables {
		value, err := decimal.NewFromString(p.Value.String())
		if err != nil {
			return nil, fmt.Errorf("%w: payable %d value: %v", ErrMalformedPayload, i+1, err)
		}
		items[i] = models.Item{
			Value:        value,
			EmissionDate: p.EmissionDate,
			AssignorID:   p.Assignor,
		}
	}
	return &models.Batch{
		ID:            w.BatchID,
		Items:         items,
		TotalPayables: w.TotalPayables,
		CreatedAt:     w.CreatedAt,
	}, nil
}
