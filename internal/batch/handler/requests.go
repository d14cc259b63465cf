package handler

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"aprovame/internal/batch/models"
	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
	"aprovame/pkg/platform/validation"
	pkgvalidation "aprovame/pkg/validation"
)

type BatchPayableRequest struct {
	Value        decimal.Decimal `json:"value"`
	EmissionDate id.ISOTime      `json:"emissionDate"`
	Assignor     string          `json:"assignor"`
}

type SubmitBatchRequest struct {
	Payables []BatchPayableRequest `json:"payables"`

	items []models.Item
}

func (r *SubmitBatchRequest) Normalize() {
	if r == nil {
		return
	}
	for i := range r.Payables {
		r.Payables[i].Assignor = strings.TrimSpace(r.Payables[i].Assignor)
	}
}

// Validate checks shape only: batch size and parseable assignor ids. Value and
// date rules are left to intake so their order is preserved.
func (r *SubmitBatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckBatchSize(len(r.Payables)); err != nil {
		return err
	}
	items := make([]models.Item, len(r.Payables))
	for i, p := range r.Payables {
		assignorID, err := id.ParseAssignorID(p.Assignor)
		if err != nil || assignorID.IsNil() {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("item %d: assignor must be a valid UUID", i+1))
		}
		items[i] = models.Item{
			Value:        p.Value,
			EmissionDate: p.EmissionDate.Time,
			AssignorID:   assignorID,
		}
	}
	r.items = items
	return nil
}

// Items returns the parsed items. Only valid after Validate succeeds.
func (r *SubmitBatchRequest) Items() []models.Item {
	return r.items
}

type TestEmailRequest struct {
	Email string `json:"email" validate:"omitempty,max=140,email"`
}

func (r *TestEmailRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *TestEmailRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return pkgvalidation.Validate(r)
}
